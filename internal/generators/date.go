package generators

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/mmrzaf/datacraft/internal/domain"
	"github.com/mmrzaf/datacraft/internal/timeutil"
)

// ISOMillis matches the ISO-8601 layout used for every generated date.
const ISOMillis = "2006-01-02T15:04:05.000Z07:00"

var defaultMinDate = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

type DateGenerator struct{}

func (g *DateGenerator) Generate(rng *rand.Rand, ctx GeneratorContext) (domain.Value, error) {
	from, to, err := dateBounds(ctx.Field, ctx.Now)
	if err != nil {
		return domain.Value{}, err
	}

	span := to.Sub(from).Milliseconds()
	offset := int64(0)
	if span > 0 {
		offset = rng.Int63n(span + 1)
	}
	ts := from.Add(time.Duration(offset) * time.Millisecond)
	return domain.Scalar(ts.UTC().Format(ISOMillis)), nil
}

func (g *DateGenerator) Validate(spec domain.FieldSchema) error {
	_, _, err := dateBounds(spec, time.Now())
	return err
}

func dateBounds(spec domain.FieldSchema, now time.Time) (time.Time, time.Time, error) {
	from, err := parseDateBound(spec.Min, defaultMinDate, now)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid 'min': %w", err)
	}
	to, err := parseDateBound(spec.Max, now, now)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid 'max': %w", err)
	}
	from = from.Truncate(time.Millisecond)
	to = to.Truncate(time.Millisecond)
	if to.Before(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("max (%s) is before min (%s)", to.Format(time.RFC3339), from.Format(time.RFC3339))
	}
	return from, to, nil
}

func parseDateBound(raw interface{}, fallback, now time.Time) (time.Time, error) {
	switch v := raw.(type) {
	case nil:
		return fallback, nil
	case string:
		if v == "" {
			return fallback, nil
		}
		return timeutil.ParseBound(v, now)
	case time.Time:
		return v.UTC(), nil
	default:
		ms, ok := toInt64(v)
		if !ok {
			return time.Time{}, fmt.Errorf("unsupported date bound %v", raw)
		}
		return time.UnixMilli(ms).UTC(), nil
	}
}
