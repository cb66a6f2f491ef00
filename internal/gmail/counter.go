package gmail

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Veraticus/carbon-footprint/internal/common"
	gmailapi "google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const (
	// GramsPerEmail is the estimated footprint of one message in grams of CO2.
	GramsPerEmail = 4.0

	receivedPageSize = 500
	userID           = "me"
)

// Counts is the email traffic since the first day of the month.
type Counts struct {
	Since    time.Time `json:"since"`
	Email    string    `json:"email"`
	Received int       `json:"received"`
	Sent     int       `json:"sent"`
}

// Total returns received plus sent.
func (c Counts) Total() int {
	return c.Received + c.Sent
}

// FootprintGrams estimates the CO2 of the month's traffic.
func (c Counts) FootprintGrams() float64 {
	return float64(c.Total()) * GramsPerEmail
}

// Message is the subject and sender of one message.
type Message struct {
	ID      string `json:"id"`
	Subject string `json:"subject"`
	From    string `json:"from"`
}

// Counter queries the Gmail API.
type Counter struct {
	svc   *gmailapi.Service
	retry common.RetryOptions
}

// NewCounter creates a counter. Pass option.WithTokenSource for real
// accounts or option.WithEndpoint and option.WithHTTPClient in tests.
func NewCounter(ctx context.Context, opts ...option.ClientOption) (*Counter, error) {
	svc, err := gmailapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail service: %w", err)
	}
	return &Counter{
		svc: svc,
		retry: common.RetryOptions{
			MaxAttempts:  3,
			InitialDelay: 500 * time.Millisecond,
			MaxDelay:     10 * time.Second,
			Multiplier:   2,
		},
	}, nil
}

// MonthStart returns midnight UTC on the first day of now's month.
func MonthStart(now time.Time) time.Time {
	now = now.UTC()
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// CountSinceMonthStart counts inbox messages by paging through every
// result and sent messages by the API's size estimate.
func (c *Counter) CountSinceMonthStart(ctx context.Context, now time.Time) (Counts, error) {
	since := MonthStart(now)
	counts := Counts{Since: since}
	after := since.Unix()

	profile, err := c.profile(ctx)
	if err != nil {
		return counts, err
	}
	counts.Email = profile

	received, err := c.countReceived(ctx, fmt.Sprintf("in:inbox after:%d", after))
	if err != nil {
		return counts, err
	}
	counts.Received = received

	sent, err := c.estimate(ctx, fmt.Sprintf("in:sent after:%d", after))
	if err != nil {
		return counts, err
	}
	counts.Sent = sent

	slog.Info("Counted emails",
		"email", counts.Email,
		"since", since.Format(time.DateOnly),
		"received", counts.Received,
		"sent", counts.Sent)
	return counts, nil
}

// Recent returns the subject and sender of the newest inbox messages since
// the start of the month.
func (c *Counter) Recent(ctx context.Context, now time.Time, limit int) ([]Message, error) {
	query := fmt.Sprintf("in:inbox after:%d", MonthStart(now).Unix())

	var list *gmailapi.ListMessagesResponse
	err := c.do(ctx, func() (err error) {
		list, err = c.svc.Users.Messages.List(userID).Q(query).MaxResults(int64(limit)).Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list recent messages: %w", err)
	}

	messages := make([]Message, 0, len(list.Messages))
	for _, m := range list.Messages {
		var full *gmailapi.Message
		err := c.do(ctx, func() (err error) {
			full, err = c.svc.Users.Messages.Get(userID, m.Id).
				Format("metadata").MetadataHeaders("Subject", "From").Context(ctx).Do()
			return err
		})
		if err != nil {
			slog.Warn("Failed to fetch message", "id", m.Id, "error", err)
			continue
		}
		messages = append(messages, Message{
			ID:      m.Id,
			Subject: header(full, "Subject", "(No Subject)"),
			From:    header(full, "From", "(No Sender)"),
		})
	}
	return messages, nil
}

func (c *Counter) profile(ctx context.Context) (string, error) {
	var profile *gmailapi.Profile
	err := c.do(ctx, func() (err error) {
		profile, err = c.svc.Users.GetProfile(userID).Context(ctx).Do()
		return err
	})
	if err != nil {
		return "", fmt.Errorf("failed to get profile: %w", err)
	}
	return profile.EmailAddress, nil
}

func (c *Counter) countReceived(ctx context.Context, query string) (int, error) {
	total := 0
	pageToken := ""
	for {
		call := c.svc.Users.Messages.List(userID).Q(query).MaxResults(receivedPageSize)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		var resp *gmailapi.ListMessagesResponse
		err := c.do(ctx, func() (err error) {
			resp, err = call.Context(ctx).Do()
			return err
		})
		if err != nil {
			return total, fmt.Errorf("failed to list received messages: %w", err)
		}

		total += len(resp.Messages)
		if resp.NextPageToken == "" {
			return total, nil
		}
		pageToken = resp.NextPageToken
	}
}

func (c *Counter) estimate(ctx context.Context, query string) (int, error) {
	var resp *gmailapi.ListMessagesResponse
	err := c.do(ctx, func() (err error) {
		resp, err = c.svc.Users.Messages.List(userID).Q(query).MaxResults(10).Context(ctx).Do()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to list sent messages: %w", err)
	}
	return int(resp.ResultSizeEstimate), nil
}

// do runs call with retry. Rate limits, server errors and transport
// failures are retried; any other API error fails immediately with ErrFetch.
func (c *Counter) do(ctx context.Context, call func() error) error {
	opts := c.retry
	opts.Retryable = retryable
	return common.WithRetry(ctx, func() error {
		err := call()
		var apiErr *googleapi.Error
		if !errors.As(err, &apiErr) {
			return err
		}
		switch {
		case apiErr.Code == http.StatusTooManyRequests:
			return fmt.Errorf("%w: %w", common.ErrRateLimit, err)
		case apiErr.Code >= http.StatusInternalServerError:
			return err
		default:
			return fmt.Errorf("%w: %w", common.ErrFetch, err)
		}
	}, opts)
}

func retryable(err error) bool {
	if common.IsRetryable(err) {
		return true
	}
	if errors.Is(err, common.ErrFetch) || errors.Is(err, context.Canceled) {
		return false
	}
	return true
}

func header(m *gmailapi.Message, name, fallback string) string {
	if m == nil || m.Payload == nil {
		return fallback
	}
	for _, h := range m.Payload.Headers {
		if h.Name == name {
			return h.Value
		}
	}
	return fallback
}
