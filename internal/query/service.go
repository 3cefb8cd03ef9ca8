package query

import "context"

// Pinger is implemented by generators that can probe their server cheaply.
type Pinger interface {
	Ping(ctx context.Context, host string) error
}

// Service binds a panel to the generator that serves its cycles.
type Service struct {
	panel Panel
	gen   Generator
}

// NewService returns a service for panel backed by gen.
func NewService(panel Panel, gen Generator) *Service {
	return &Service{panel: panel, gen: gen}
}

// Panel returns a copy of the configured controls.
func (s *Service) Panel() Panel {
	p := s.panel
	p.Models = append([]string(nil), s.panel.Models...)
	return p
}

// Query runs one cycle.
func (s *Service) Query(ctx context.Context, in Input) View {
	return Run(ctx, s.gen, in)
}

// Ready probes the default host when the generator supports it.
func (s *Service) Ready(ctx context.Context) error {
	if p, ok := s.gen.(Pinger); ok {
		return p.Ping(ctx, s.panel.Host)
	}
	return nil
}
