package office

import (
	"cmp"
	"fmt"
	"log/slog"
	"slices"

	"github.com/coolbeans/tenure/pkg/calendar"
	"github.com/coolbeans/tenure/pkg/dates"
	"github.com/coolbeans/tenure/pkg/infobox"
	"github.com/coolbeans/tenure/pkg/locale"
)

// Builder turns one document's field frames into office terms.
//
// A Builder holds no per-call state; one instance can serve concurrent
// Build calls for different documents.
type Builder struct {
	normalizer *dates.Normalizer
	labeler    *Labeler
	logger     *slog.Logger

	// Strict makes Build fail on the first date that cannot be normalized.
	// Otherwise the tidied source text is kept in StartRaw/EndRaw and a
	// warning is logged.
	Strict bool
}

// NewBuilder creates a builder for documents written in the locale of rules.
func NewBuilder(rules *locale.Rules, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{
		normalizer: dates.NewNormalizer(rules),
		labeler:    NewLabeler(),
		logger:     logger,
	}
}

// SetLabeler replaces the position labeler.
func (b *Builder) SetLabeler(labeler *Labeler) {
	b.labeler = labeler
}

// Normalizer returns the date normalizer in use.
func (b *Builder) Normalizer() *dates.Normalizer {
	return b.normalizer
}

// BuildDocument builds the terms of a decoded page.
func (b *Builder) BuildDocument(doc *infobox.Document) ([]Term, error) {
	frames, err := doc.Frames()
	if err != nil {
		return nil, err
	}
	terms, err := b.Build(frames)
	if err != nil {
		return nil, fmt.Errorf("page %q: %w", doc.Title, err)
	}
	return terms, nil
}

// Build returns one term per frame, in frame index order.
//
// A frame with dates but no explicit title of its own takes the explicit
// title of the next frame, if that frame has one, even when it could derive
// a label; titles are not passed along further. Frames that end up without a position label are dropped,
// so the result is never longer than frames.
func (b *Builder) Build(frames []infobox.Frame) ([]Term, error) {
	ordered := slices.Clone(frames)
	slices.SortStableFunc(ordered, func(x, y infobox.Frame) int {
		return cmp.Compare(x.Index, y.Index)
	})

	titles := b.fillTitles(ordered)

	terms := make([]Term, 0, len(ordered))
	for i, frame := range ordered {
		term, err := b.buildTerm(frame, titles[i])
		if err != nil {
			return nil, err
		}
		if term.Position == "" {
			b.logger.Debug("Dropping frame without position", "frame", frame.Index)
			continue
		}
		terms = append(terms, term)
	}
	return terms, nil
}

// fillTitles returns the explicit title of each frame, with gaps filled
// from the following frame.
func (b *Builder) fillTitles(frames []infobox.Frame) []*infobox.Field {
	own := make([]*infobox.Field, len(frames))
	for i, frame := range frames {
		if title, ok := frame.Title(); ok {
			own[i] = &title
		}
	}

	titles := slices.Clone(own)
	for i, frame := range frames {
		if own[i] != nil || !frame.HasTermData() {
			continue
		}
		if i+1 < len(frames) && own[i+1] != nil {
			titles[i] = own[i+1]
			b.logger.Debug("Filled title from next frame",
				"frame", frame.Index,
				"from", frames[i+1].Index,
				"replaces_label", frame.HasTitleSource())
		}
	}
	return titles
}

func (b *Builder) buildTerm(frame infobox.Frame, title *infobox.Field) (Term, error) {
	var term Term
	if title != nil {
		term.Position = Deordinal(title.Text)
		term.Office = linkRefFrom(*title)
	} else {
		term.Position = Deordinal(b.labeler.Label(frame))
	}
	if term.Position == "" {
		return term, nil
	}

	startRaw, endRaw := frame.StartRaw(), frame.EndRaw()
	if combined := frame.CombinedRaw(); combined != "" {
		frags := b.normalizer.Split(combined)
		startRaw, endRaw = frags.Start, frags.End
	}
	if err := b.resolve(frame.Index, "start", startRaw, &term.StartDate, &term.StartRaw); err != nil {
		return Term{}, err
	}
	if err := b.resolve(frame.Index, "end", endRaw, &term.EndDate, &term.EndRaw); err != nil {
		return Term{}, err
	}

	term.Ordinal = frame.Ordinal()

	if field, ok := frame.Predecessor(); ok {
		term.Predecessor = linkRefFrom(field)
	}
	if field, ok := frame.Successor(); ok {
		term.Successor = linkRefFrom(field)
	}
	if field, ok := frame.Constituency(); ok {
		term.Constituency = linkRefFrom(field)
	}
	return term, nil
}

// resolve normalizes one side of a term. In lenient mode a failure leaves
// value zero and stores the tidied text in fallback.
func (b *Builder) resolve(index int, side, raw string, value *calendar.Value, fallback *string) error {
	if raw == "" {
		return nil
	}

	v, err := b.normalizer.Normalize(raw)
	if err == nil {
		*value = v
		return nil
	}
	if b.Strict {
		return fmt.Errorf("frame %d %s date: %w", index, side, err)
	}

	*fallback = dates.Tidy(raw)
	b.logger.Warn("Keeping raw date",
		"frame", index,
		"side", side,
		"raw", *fallback,
		"locale", b.normalizer.Rules().Code,
		"error", err)
	return nil
}
