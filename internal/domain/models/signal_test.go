package models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupSignalTable(t *testing.T) {
	cases := []struct {
		label     string
		magnitude int
		bucket    Bucket
	}{
		{"BLUE", 0, BucketBlue},
		{"GREEN_POS", 1, BucketGreen},
		{"GREEN_NEG", -1, BucketGreen},
		{"YELLOW_POS", 2, BucketYellow},
		{"YELLOW_NEG", -2, BucketYellow},
		{"RED_POS", 3, BucketRed},
		{"RED_NEG", -3, BucketRed},
	}
	for _, tc := range cases {
		t.Run(tc.label, func(t *testing.T) {
			s, err := LookupSignal(tc.label)
			require.NoError(t, err)
			assert.Equal(t, tc.magnitude, s.Magnitude)
			assert.Equal(t, tc.bucket, s.Bucket)
			assert.True(t, IsKnownSignal(tc.label))
		})
	}
}

func TestLookupSignalUnknown(t *testing.T) {
	for _, label := range []string{"PURPLE", "", "blue", "RED"} {
		_, err := LookupSignal(label)
		assert.ErrorIs(t, err, ErrUnknownLabel, label)
		assert.False(t, IsKnownSignal(label))
	}
}

func TestFailureKind(t *testing.T) {
	cases := map[string]error{
		"none":          nil,
		"auth":          &AuthError{Status: 401, Err: errors.New("invalid_client")},
		"fetch":         &FetchError{URL: "u", Status: 500, Err: errors.New("boom")},
		"parse":         &ParseError{Input: "x", Err: errors.New("bad")},
		"unknown_label": fmt.Errorf("%w: PURPLE", ErrUnknownLabel),
		"empty":         ErrEmptyResult,
		"stale":         fmt.Errorf("%w (2m1s)", ErrStaleData),
		"other":         errors.New("something else"),
	}
	for want, err := range cases {
		assert.Equal(t, want, FailureKind(err))
	}
}
