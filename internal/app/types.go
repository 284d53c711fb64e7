package app

import "char-count/internal/count"

type Options struct {
	Paths            []string
	CWD              string
	ConfigPath       string
	Format           string
	Jobs             int
	MaxFileSizeBytes int64
	Flags            count.Flags
	IgnorePatterns   []string
	Version          string
	Args             []string
	// Stdin 非空时只统计这段输入，忽略 Paths。
	Stdin []byte
}

type Summary struct {
	TotalFiles int          `json:"total_files"`
	Processed  int          `json:"processed_files"`
	Skipped    int          `json:"skipped_files"`
	Errors     int          `json:"error_count"`
	Totals     count.Result `json:"totals"`
}

type Result struct {
	Events      []map[string]any
	Summary     Summary
	HasInputErr bool
}
