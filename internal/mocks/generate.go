// Package mocks holds gomock doubles for the orchestrator ports.
//
// Regenerate after interface changes with:
//
//	go generate ./internal/mocks
package mocks

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=credit_gate_mock.go scribe/internal/orchestrator CreditGate
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=generator_mock.go scribe/internal/orchestrator Generator
