// Package assist wraps the generative-text service for the two community
// workflows: summarizing free-text flood reports and matching resource
// requests against offers.
package assist

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/mr1hm/flood-response/internal/models"
)

var (
	// ErrEmptyInput is returned before any generative call is made.
	ErrEmptyInput = errors.New("no report text to summarize")
	// ErrMatchingBusy serializes matching: one generative match runs at a
	// time, further triggers are rejected rather than queued.
	ErrMatchingBusy = errors.New("a matching request is already in progress")
)

// TextGenerator is the single generative-text operation this service
// consumes.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

type Service struct {
	gen      TextGenerator
	matching atomic.Bool
}

func NewService(gen TextGenerator) *Service {
	return &Service{gen: gen}
}

// Summarize condenses raw flood reports. Language is optional; when set the
// summary is requested in that language.
func (s *Service) Summarize(ctx context.Context, reports, language string) (string, error) {
	if strings.TrimSpace(reports) == "" {
		return "", ErrEmptyInput
	}
	return s.gen.GenerateText(ctx, summarizePrompt(reports, language))
}

// Match ranks the counterpart records most relevant to one request or
// offer. An empty counterpart list is valid; the prompt simply describes
// zero records.
func (s *Service) Match(ctx context.Context, record *models.Resource, counterparts []models.Resource) (string, error) {
	if !s.matching.CompareAndSwap(false, true) {
		return "", ErrMatchingBusy
	}
	defer s.matching.Store(false)

	return s.gen.GenerateText(ctx, matchPrompt(record, counterparts))
}

func summarizePrompt(reports, language string) string {
	var b strings.Builder
	b.WriteString("Summarize the following flood reports concisely, highlighting key affected areas, " +
		"urgent needs, and any positive developments. Assume these are reports from various community " +
		"members in Guwahati, Assam. Format the summary with bullet points for clarity.")
	if language != "" {
		fmt.Fprintf(&b, " Provide the summary in %s.", language)
	}
	b.WriteString("\n\n")
	b.WriteString(reports)
	return b.String()
}

func matchPrompt(record *models.Resource, counterparts []models.Resource) string {
	lines := make([]string, 0, len(counterparts))
	for _, c := range counterparts {
		switch c.Kind {
		case models.ResourceKindOffer:
			lines = append(lines, fmt.Sprintf("- Item: %s, Quantity: %d, Location: %s, Availability: %s",
				c.Item, c.Quantity, c.Location, c.Availability))
		case models.ResourceKindRequest:
			lines = append(lines, fmt.Sprintf("- Item: %s, Quantity: %d, Location: %s, Urgency: %s",
				c.Item, c.Quantity, c.Location, c.Urgency))
		}
	}
	listing := strings.Join(lines, "\n")

	if record.Kind == models.ResourceKindRequest {
		return fmt.Sprintf("I am requesting '%s' with a quantity of %d at location '%s'. "+
			"Here are the current resource offers:\n\n%s\n\n"+
			"Which offers are most relevant to my request? Summarize the top 3 most relevant offers "+
			"and explain why they are a good match. Please format the response clearly.",
			record.Item, record.Quantity, record.Location, listing)
	}
	return fmt.Sprintf("I am offering '%s' with a quantity of %d at location '%s'. "+
		"Here are the current resource requests:\n\n%s\n\n"+
		"Which requests are most relevant to my offer? Summarize the top 3 most relevant requests "+
		"and explain why they are a good match. Please format the response clearly.",
		record.Item, record.Quantity, record.Location, listing)
}
