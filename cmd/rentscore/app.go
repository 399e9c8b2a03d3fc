package main

import (
	"github.com/rewired-gh/rentscore/internal/analyzer"
	"github.com/rewired-gh/rentscore/internal/rentcast"
)

func newProvider(st *appState) *rentcast.Client {
	rc := st.cfg.Rentcast
	return rentcast.NewClient(rc.APIBaseURL, rc.APIKey, rc.Timeout, rentcast.ClientConfig{
		MaxRetries:        rc.MaxRetries,
		RetryDelayBase:    rc.RetryDelayBase,
		RequestsPerSecond: rc.RequestsPerSecond,
		Burst:             rc.Burst,
	})
}

func newAnalyzer(st *appState) (*analyzer.Analyzer, error) {
	return analyzer.New(
		newProvider(st),
		st.rentCache,
		st.cfg.Scoring.Profiles,
		st.cfg.Scoring.DefaultProfile,
		st.cfg.Watch.Concurrency,
	)
}
