package assets

import (
	"errors"
	"fmt"
)

// LoadFailure names the boundary condition that stopped an ingestion call.
type LoadFailure int

const (
	AssetFolderNotFound LoadFailure = iota + 1
	ModelFolderNotFound
	TextureFolderNotFound
	TagsFolderNotFound
	TagsBlockstatesNotFound
	IncorrectNamespace
	IncorrectTagFile
	InvalidBlockstateFormat
	InvalidModelFile
)

var failureNames = map[LoadFailure]string{
	AssetFolderNotFound:     "asset folder not found",
	ModelFolderNotFound:     "model folder not found",
	TextureFolderNotFound:   "texture folder not found",
	TagsFolderNotFound:      "tags folder not found",
	TagsBlockstatesNotFound: "blockstates folder not found",
	IncorrectNamespace:      "incorrect namespace",
	IncorrectTagFile:        "incorrect tag file",
	InvalidBlockstateFormat: "invalid blockstate format",
	InvalidModelFile:        "invalid model file",
}

func (f LoadFailure) String() string {
	if name, ok := failureNames[f]; ok {
		return name
	}
	return fmt.Sprintf("load failure %d", int(f))
}

func (f LoadFailure) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// Sentinels for errors.Is; every LoadError matches the one for its Kind.
var (
	ErrAssetFolderNotFound     = errors.New(AssetFolderNotFound.String())
	ErrModelFolderNotFound     = errors.New(ModelFolderNotFound.String())
	ErrTextureFolderNotFound   = errors.New(TextureFolderNotFound.String())
	ErrTagsFolderNotFound      = errors.New(TagsFolderNotFound.String())
	ErrTagsBlockstatesNotFound = errors.New(TagsBlockstatesNotFound.String())
	ErrIncorrectNamespace      = errors.New(IncorrectNamespace.String())
	ErrIncorrectTagFile        = errors.New(IncorrectTagFile.String())
	ErrInvalidBlockstateFormat = errors.New(InvalidBlockstateFormat.String())
	ErrInvalidModelFile        = errors.New(InvalidModelFile.String())
)

var sentinels = map[LoadFailure]error{
	AssetFolderNotFound:     ErrAssetFolderNotFound,
	ModelFolderNotFound:     ErrModelFolderNotFound,
	TextureFolderNotFound:   ErrTextureFolderNotFound,
	TagsFolderNotFound:      ErrTagsFolderNotFound,
	TagsBlockstatesNotFound: ErrTagsBlockstatesNotFound,
	IncorrectNamespace:      ErrIncorrectNamespace,
	IncorrectTagFile:        ErrIncorrectTagFile,
	InvalidBlockstateFormat: ErrInvalidBlockstateFormat,
	InvalidModelFile:        ErrInvalidModelFile,
}

// LoadError is returned by every failing LoadAssets call. Path names the
// folder or file that failed the check; Err carries the underlying cause, if
// any.
type LoadError struct {
	Kind LoadFailure
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	msg := e.Kind.String()
	if e.Path != "" {
		msg += ": " + e.Path
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

func (e *LoadError) Is(target error) bool {
	sentinel, ok := sentinels[e.Kind]
	return ok && sentinel == target
}

func failure(kind LoadFailure, path string, cause error) error {
	return &LoadError{Kind: kind, Path: path, Err: cause}
}

// FailureOf extracts the failure kind from err, if it is a LoadError.
func FailureOf(err error) (LoadFailure, bool) {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Kind, true
	}
	return 0, false
}
