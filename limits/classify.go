// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package limits

import "fmt"

// Band is one frequency-band variant of a model.
type Band struct {
	Name   string           // e.g. "VHF"
	Suffix string           // appended to the model name, e.g. "V"
	Detect FrequencyRange   // channel frequencies must lie within this range
	Ranges []FrequencyRange // supported ranges of the variant
}

// ClassificationAmbiguousError is returned when no band contains the observed range.
// It is not fatal: the radio remains usable without frequency checks.
type ClassificationAmbiguousError struct {
	Observed FrequencyRange
	Channels int
}

func (e *ClassificationAmbiguousError) Error() string {
	return fmt.Sprintf("cannot determine frequency band from %d channels between %v, will not check frequency ranges",
		e.Channels, e.Observed)
}

// Classify returns the first band of the ordered table whose detection range
// contains the complete observed range.
func Classify(observed FrequencyRange, channels int, bands []Band) (Band, error) {
	for _, b := range bands {
		if b.Detect.ContainsRange(observed) {
			return b, nil
		}
	}
	return Band{}, &ClassificationAmbiguousError{Observed: observed, Channels: channels}
}
