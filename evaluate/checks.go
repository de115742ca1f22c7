package evaluate

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Required accepts any non-absent, non-empty candidate. This is also
// the fallback the engine substitutes for slots without a registered
// evaluator.
func Required(slot, prompt string) *SlotEvaluator {
	return NewSlotEvaluator(slot, prompt, func(ctx context.Context, val *SlotValue) (Assessment, map[string]string, error) {
		if present(val.Current) {
			return Valid, nil, nil
		}
		return Invalid, nil, nil
	})
}

type membershipOptions struct {
	canonicalize bool
}

type MembershipOption func(*membershipOptions)

// WithCanonicalization accepts case-insensitive near-matches and
// forces the canonical member back onto the turn as a replacement.
func WithCanonicalization() MembershipOption {
	return func(o *membershipOptions) {
		o.canonicalize = true
	}
}

// Membership accepts a candidate that exactly matches a member of the
// fixed set. The set is read-only after construction.
func Membership(slot, prompt string, allowed []string, opts ...MembershipOption) *SlotEvaluator {
	options := membershipOptions{}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}
	members := make([]string, len(allowed))
	copy(members, allowed)
	return NewSlotEvaluator(slot, prompt, func(ctx context.Context, val *SlotValue) (Assessment, map[string]string, error) {
		if !present(val.Current) {
			return Invalid, nil, nil
		}
		for _, member := range members {
			if *val.Current == member {
				return Valid, nil, nil
			}
		}
		if options.canonicalize {
			for _, member := range members {
				if strings.EqualFold(*val.Current, member) {
					return Valid, map[string]string{slot: member}, nil
				}
			}
		}
		return Invalid, nil, nil
	})
}

// Date accepts a YYYY-MM-DD candidate whose components survive
// calendar reconstruction. Rebuilding "2020-02-30" yields March 1, so
// the day no longer round-trips and the candidate is rejected; this
// guards against date rollover of invalid days.
func Date(slot, prompt string) *SlotEvaluator {
	return NewSlotEvaluator(slot, prompt, func(ctx context.Context, val *SlotValue) (Assessment, map[string]string, error) {
		if !present(val.Current) {
			return Invalid, nil, nil
		}
		if validCalendarDate(*val.Current) {
			return Valid, nil, nil
		}
		return Invalid, nil, nil
	})
}

func validCalendarDate(s string) bool {
	if !strings.Contains(s, "-") {
		return false
	}
	parts := strings.Split(s, "-")
	if len(parts) != 3 {
		return false
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return false
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil {
		return false
	}
	day, err := strconv.Atoi(parts[2])
	if err != nil {
		return false
	}
	rebuilt := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return rebuilt.Year() == year && rebuilt.Month() == time.Month(month) && rebuilt.Day() == day
}

// currencyShape is anchored at the start only: an optional 1-9 leading
// digit, more digits, a decimal point, two digits. Trailing garbage
// still passes ("12.50xyz"). The looseness is intentional, this is a
// shape check rather than a currency parser.
var currencyShape = regexp.MustCompile(`^[1-9]?[0-9]*\.[0-9]{2}`)

// Currency accepts a candidate whose prefix looks like an amount with
// two decimal places.
func Currency(slot, prompt string) *SlotEvaluator {
	return NewSlotEvaluator(slot, prompt, func(ctx context.Context, val *SlotValue) (Assessment, map[string]string, error) {
		if !present(val.Current) {
			return Invalid, nil, nil
		}
		if currencyShape.MatchString(*val.Current) {
			return Valid, nil, nil
		}
		return Invalid, nil, nil
	})
}
