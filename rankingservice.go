package main

import (
	"blockcolors/internal/colorspace"
	"blockcolors/internal/corpus"
	"blockcolors/internal/harmony"
	"blockcolors/internal/ranking"
	"blockcolors/internal/settings"
	"context"
	"errors"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

type RankRequest struct {
	// Reference is a hex color ("#a83232") or a qualified texture name
	// ("minecraft:block/stone").
	Reference string           `json:"reference"`
	Profile   string           `json:"profile"`
	Options   *ranking.Options `json:"options,omitempty"`
	Biome     string           `json:"biome,omitempty"`
	// Limit caps the visible entries; zero means the profile's image count.
	Limit int `json:"limit"`
	// Skip lists positions in the full ordering to hide, zero-based.
	Skip []int `json:"skip,omitempty"`
}

type RankResponse struct {
	Reference  string                 `json:"reference"`
	Generation uint64                 `json:"generation"`
	Total      int                    `json:"total"`
	Ranges     ranking.Ranges         `json:"ranges"`
	Entries    []ranking.VisibleEntry `json:"entries"`
}

type HarmonyRequest struct {
	Color        string `json:"color"`
	Relationship string `json:"relationship"`
	Mode         string `json:"mode"`
	Profile      string `json:"profile"`
	Limit        int    `json:"limit"`
}

type HarmonyMember struct {
	Offset  float64                `json:"offset"`
	Color   string                 `json:"color"`
	Entries []ranking.VisibleEntry `json:"entries"`
}

type HarmonyResponse struct {
	Relationship string          `json:"relationship"`
	Members      []HarmonyMember `json:"members"`
}

type RankingService struct {
	engine   *ranking.Engine
	settings *settings.Repository
	ingest   *IngestService
}

func NewRankingService(engine *ranking.Engine, settingsRepo *settings.Repository, ingest *IngestService) *RankingService {
	return &RankingService{engine: engine, settings: settingsRepo, ingest: ingest}
}

func (s *RankingService) options(profile string, override *ranking.Options) (ranking.Options, error) {
	if override != nil {
		return override.Normalized(), nil
	}
	options, err := s.settings.Options(context.Background(), profile)
	if err != nil {
		return ranking.Options{}, err
	}
	return options.Normalized(), nil
}

func (s *RankingService) MakeOrdering(request RankRequest) (RankResponse, error) {
	options, err := s.options(request.Profile, request.Options)
	if err != nil {
		return RankResponse{}, err
	}
	if request.Biome != "" {
		if err := s.ingest.ApplyBiomeTint(request.Biome); err != nil {
			return RankResponse{}, err
		}
	}

	current := s.engine.Corpus()
	reference, err := referenceFor(current, request.Reference, options)
	if err != nil {
		return RankResponse{}, err
	}

	result, err := ranking.MakeOrdering(current, reference, options)
	if err != nil {
		return RankResponse{}, err
	}

	limit := request.Limit
	if limit <= 0 {
		limit = options.Images
	}
	filter := ranking.NewFilter(current, options, reference.Name)
	for _, index := range request.Skip {
		filter.Skip(index)
	}
	return RankResponse{
		Reference:  request.Reference,
		Generation: result.Generation,
		Total:      len(result.Entries),
		Ranges:     result.Ranges,
		Entries:    filter.Visible(result.Entries, limit),
	}, nil
}

func referenceFor(c *corpus.Corpus, value string, options ranking.Options) (ranking.Reference, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return ranking.Reference{}, errors.New("reference is required")
	}
	if strings.Contains(value, ":") || strings.Contains(value, "/") {
		return ranking.ImageReference(c, value, options)
	}
	linear, err := ranking.ParseReferenceColor(value)
	if err != nil {
		return ranking.Reference{}, err
	}
	return ranking.ColorReference(linear, options), nil
}

func (s *RankingService) RankHarmony(request HarmonyRequest) (HarmonyResponse, error) {
	options, err := s.options(request.Profile, nil)
	if err != nil {
		return HarmonyResponse{}, err
	}
	mode, err := harmony.ParseMode(request.Mode)
	if err != nil {
		return HarmonyResponse{}, err
	}
	relationship, err := harmony.Lookup(request.Relationship)
	if err != nil {
		return HarmonyResponse{}, err
	}
	base, err := ranking.ParseReferenceColor(request.Color)
	if err != nil {
		return HarmonyResponse{}, err
	}
	anchor := 0
	for i, member := range relationship.Members {
		if member.Offset == 0 {
			anchor = i
			break
		}
	}
	if err := relationship.Update(anchor, base, mode); err != nil {
		return HarmonyResponse{}, err
	}

	rankings, err := harmony.RankRelationship(s.engine, relationship, options)
	if err != nil {
		return HarmonyResponse{}, err
	}

	limit := request.Limit
	if limit <= 0 {
		limit = options.Images
	}
	filter := ranking.NewFilter(s.engine.Corpus(), options, "")
	response := HarmonyResponse{Relationship: relationship.Name, Members: make([]HarmonyMember, 0, len(rankings))}
	for _, item := range rankings {
		response.Members = append(response.Members, HarmonyMember{
			Offset:  item.Member.Offset,
			Color:   hexColor(item.Member.Color),
			Entries: filter.Visible(item.Result.Entries, limit),
		})
	}
	return response, nil
}

func hexColor(linear colorspace.Vec3) string {
	return colorful.LinearRgb(linear[0], linear[1], linear[2]).Clamped().Hex()
}
