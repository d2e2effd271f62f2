package main

import (
	"blockcolors/internal/assets"
	"blockcolors/internal/scanner"
	"context"
	"time"
)

type ScannerService struct {
	scanner *scanner.Service
}

func NewScannerService(scanService *scanner.Service) *ScannerService {
	return &ScannerService{scanner: scanService}
}

func (s *ScannerService) SetDecodeMode(mode assets.DecodeMode) {
	s.scanner.SetDecodeMode(mode)
}

func (s *ScannerService) TriggerFullScan() error {
	return s.scanner.TriggerFullScan()
}

func (s *ScannerService) RunScan() (scanner.Result, error) {
	return s.scanner.Run(context.Background())
}

func (s *ScannerService) Reload() (int, error) {
	return s.scanner.Reload(context.Background())
}

func (s *ScannerService) StartWatching(debounce time.Duration) error {
	return s.scanner.StartWatching(context.Background(), debounce)
}

func (s *ScannerService) StopWatching() {
	s.scanner.StopWatching()
}

func (s *ScannerService) GetStatus() scanner.Status {
	return s.scanner.GetStatus()
}
