package handoff

import (
	"fmt"

	"github.com/hupe1980/agentrelay/core"
	"github.com/hupe1980/agentrelay/logging"
)

// DefaultMaxItems bounds how many items one activation imports.
const DefaultMaxItems = 6

// Options configures Merge.
type Options struct {
	// MaxItems is the size of the window taken from the tail of the source
	// record after filtering. Non-positive values fall back to DefaultMaxItems.
	MaxItems int
	Logger   logging.Logger
}

// Result reports what a merge did.
type Result struct {
	// Copied holds the identifiers appended to the destination, in order.
	Copied []string
	// Duplicates counts window items skipped because the destination already
	// held their identifier.
	Duplicates int
	// Anomalies counts malformed window items: a missing identifier (copied
	// under a fresh one) or an identifier repeated within the window (copied
	// once).
	Anomalies int
}

// Merge imports the tail of src into dst:
//  1. copy src without instruction items, keeping tool items
//  2. truncate the copy to the MaxItems most recent items
//  3. append, in order, every item whose identifier dst does not hold yet
//
// dst is only appended to; src is never modified.
func Merge(dst, src *core.Record, optFns ...func(o *Options)) (Result, error) {
	opts := Options{MaxItems: DefaultMaxItems}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.MaxItems <= 0 {
		opts.MaxItems = DefaultMaxItems
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	var res Result
	if dst == nil || src == nil {
		return res, nil
	}

	window := src.Copy(core.CopyOptions{ExcludeInstructions: true}).
		Truncate(opts.MaxItems).
		Items()

	present := dst.IDs()
	seen := make(map[string]struct{}, len(window))
	staged := make([]core.Item, 0, len(window))

	for _, it := range window {
		if it.ID == "" {
			it.ID = core.NewID()
			res.Anomalies++
			opts.Logger.Warn("handoff.merge.anomaly", "reason", "missing item id", "source", src.Owner(), "target", dst.Owner(), "assigned_id", it.ID)
			staged = append(staged, it)
			continue
		}
		if _, dup := seen[it.ID]; dup {
			res.Anomalies++
			opts.Logger.Warn("handoff.merge.anomaly", "reason", "repeated item id", "source", src.Owner(), "target", dst.Owner(), "item_id", it.ID)
			continue
		}
		seen[it.ID] = struct{}{}
		if _, ok := present[it.ID]; ok {
			res.Duplicates++
			continue
		}
		staged = append(staged, it)
	}

	if err := dst.Append(staged...); err != nil {
		return Result{}, fmt.Errorf("merge %s into %s: %w", src.Owner(), dst.Owner(), err)
	}
	for _, it := range staged {
		res.Copied = append(res.Copied, it.ID)
	}

	opts.Logger.Debug("handoff.merge", "source", src.Owner(), "target", dst.Owner(), "window", len(window), "copied", len(res.Copied), "duplicates", res.Duplicates, "anomalies", res.Anomalies)
	return res, nil
}
