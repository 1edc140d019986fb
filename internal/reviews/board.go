package reviews

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/unicode/norm"
)

const (
	instrumentationName = "manaklaltailor.in/web/internal/reviews"
	reviewIDPrefix      = "rev_"
)

// Target displays a projected board, replacing whatever it showed before.
type Target interface {
	Render(ctx context.Context, entries []Entry) error
}

// TargetFunc adapts a function to Target.
type TargetFunc func(ctx context.Context, entries []Entry) error

func (f TargetFunc) Render(ctx context.Context, entries []Entry) error {
	return f(ctx, entries)
}

// Confirmer asks the visitor a yes/no question.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) bool

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) bool {
	return f(ctx, prompt)
}

// Submission carries the raw form fields of a new review.
type Submission struct {
	Name   string
	Text   string
	Rating int
}

// BoardDeps bundles collaborators required to construct a Board.
type BoardDeps struct {
	Store       *Store
	Target      Target
	Clock       func() time.Time
	IDGenerator func() string
	FormatTime  TimeFormatter
	// ClearPrompt is shown to the Confirmer before clearing.
	ClearPrompt string
	Tracer      trace.Tracer
	Meter       metric.Meter
}

// Board runs the submit and clear flows: validate, mutate the store, then
// re-render the whole board on the target.
type Board struct {
	store       *Store
	target      Target
	clock       func() time.Time
	newID       func() string
	formatTime  TimeFormatter
	clearPrompt string
	tracer      trace.Tracer
	submissions metric.Int64Counter
	clears      metric.Int64Counter
}

// NewBoard wires dependencies into a Board.
func NewBoard(deps BoardDeps) (*Board, error) {
	if deps.Store == nil {
		return nil, errors.New("reviews: store is required")
	}
	if deps.Target == nil {
		return nil, errors.New("reviews: render target is required")
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = func() string {
			return reviewIDPrefix + ulid.Make().String()
		}
	}
	prompt := deps.ClearPrompt
	if prompt == "" {
		prompt = "Delete all reviews?"
	}
	tracer := deps.Tracer
	if tracer == nil {
		tracer = otel.Tracer(instrumentationName)
	}
	meter := deps.Meter
	if meter == nil {
		meter = otel.Meter(instrumentationName)
	}
	submissions, err := meter.Int64Counter("reviews.submissions",
		metric.WithDescription("Review submissions by outcome."))
	if err != nil {
		return nil, err
	}
	clears, err := meter.Int64Counter("reviews.clears",
		metric.WithDescription("Board clear requests by outcome."))
	if err != nil {
		return nil, err
	}

	return &Board{
		store:       deps.Store,
		target:      deps.Target,
		clock:       clock,
		newID:       idGen,
		formatTime:  deps.FormatTime,
		clearPrompt: prompt,
		tracer:      tracer,
		submissions: submissions,
		clears:      clears,
	}, nil
}

// Submit validates s, appends it as a new record and re-renders. A rejected
// submission returns a *ValidationError and leaves the store untouched.
func (b *Board) Submit(ctx context.Context, s Submission) (Collection, error) {
	ctx, span := b.tracer.Start(ctx, "reviews.Submit")
	defer span.End()

	rec, err := b.buildRecord(s)
	if err != nil {
		b.submissions.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", "rejected")))
		span.SetAttributes(attribute.Bool("reviews.valid", false))
		return nil, err
	}

	c, err := b.store.Append(ctx, rec)
	if err != nil {
		b.submissions.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", "error")))
		span.RecordError(err)
		span.SetStatus(codes.Error, "append failed")
		return nil, err
	}
	b.submissions.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", "accepted")))
	span.SetAttributes(
		attribute.Bool("reviews.valid", true),
		attribute.Int("reviews.count", len(c)),
		attribute.Int("reviews.rating", rec.Rating),
	)

	if err := b.render(ctx, c); err != nil {
		return c, err
	}
	return c, nil
}

// Clear empties the board after the confirmer agrees. It reports whether the
// board was cleared; a declined prompt is not an error.
func (b *Board) Clear(ctx context.Context, confirmer Confirmer) (bool, error) {
	ctx, span := b.tracer.Start(ctx, "reviews.Clear")
	defer span.End()

	if confirmer == nil || !confirmer.Confirm(ctx, b.clearPrompt) {
		b.clears.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", "declined")))
		span.SetAttributes(attribute.Bool("reviews.confirmed", false))
		return false, nil
	}
	span.SetAttributes(attribute.Bool("reviews.confirmed", true))

	if err := b.store.Clear(ctx); err != nil {
		b.clears.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", "error")))
		span.RecordError(err)
		span.SetStatus(codes.Error, "clear failed")
		return false, err
	}
	b.clears.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", "cleared")))

	if err := b.render(ctx, Collection{}); err != nil {
		return true, err
	}
	return true, nil
}

// Refresh loads the current collection and renders it.
func (b *Board) Refresh(ctx context.Context) error {
	ctx, span := b.tracer.Start(ctx, "reviews.Refresh")
	defer span.End()
	return b.render(ctx, b.store.Load(ctx))
}

// Entries projects the current collection without rendering it.
func (b *Board) Entries(ctx context.Context) []Entry {
	return Project(b.store.Load(ctx), b.formatTime)
}

func (b *Board) render(ctx context.Context, c Collection) error {
	if err := b.target.Render(ctx, Project(c, b.formatTime)); err != nil {
		trace.SpanFromContext(ctx).RecordError(err)
		return err
	}
	return nil
}

func (b *Board) buildRecord(s Submission) (Record, error) {
	name := normalizeName(s.Name)
	text := normalizeText(s.Text)

	verr := &ValidationError{}
	switch {
	case name == "":
		verr.add("name", ReasonRequired)
	case utf8.RuneCountInString(name) > MaxNameRunes:
		verr.add("name", ReasonTooLong)
	}
	switch {
	case text == "":
		verr.add("text", ReasonRequired)
	case utf8.RuneCountInString(text) > MaxTextRunes:
		verr.add("text", ReasonTooLong)
	}
	if s.Rating < MinRating || s.Rating > MaxRating {
		verr.add("rating", ReasonOutOfRange)
	}
	if !verr.empty() {
		return Record{}, verr
	}

	return Record{
		Name:   name,
		Text:   text,
		Rating: s.Rating,
		Time:   b.clock().UnixMilli(),
		ID:     b.newID(),
	}, nil
}

func normalizeName(input string) string {
	return strings.Join(strings.Fields(stripControl(norm.NFC.String(input), false)), " ")
}

// normalizeText keeps line breaks and inner spacing, trimming only line ends.
func normalizeText(input string) string {
	s := norm.NFC.String(input)
	s = strings.ReplaceAll(strings.ReplaceAll(s, "\r\n", "\n"), "\r", "\n")
	lines := strings.Split(stripControl(s, true), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func stripControl(s string, keepNewline bool) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' && keepNewline {
			return r
		}
		if unicode.IsControl(r) {
			if r == '\n' || r == '\t' {
				return ' '
			}
			return -1
		}
		return r
	}, s)
}
