// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"testing"

	"github.com/spf13/pflag"
)

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"abc", "abc", 0},
		{"abc", "abd", 1},
		{"abc", "ab", 1},
		{"ab", "abc", 1},
		{"abc", "bac", 2},
		{"kitten", "sitting", 3},
		{"assign", "asign", 1},
		{"doctor", "docotr", 2},
	}

	for _, test := range tests {
		t.Run(test.a+"->"+test.b, func(t *testing.T) {
			got := levenshtein(test.a, test.b)
			if got != test.want {
				t.Errorf("levenshtein(%q, %q) = %d, want %d", test.a, test.b, got, test.want)
			}
			if reverse := levenshtein(test.b, test.a); reverse != got {
				t.Errorf("levenshtein is not symmetric: %d vs %d", got, reverse)
			}
		})
	}
}

func TestSuggestCommand(t *testing.T) {
	commands := []*Command{
		{Name: "scan"},
		{Name: "plan"},
		{Name: "assign"},
		{Name: "seats"},
		{Name: "doctor"},
		{Name: "version"},
	}

	tests := []struct {
		input string
		want  string
	}{
		{"asign", "assign"},
		{"doktor", "doctor"},
		{"vrsion", "version"},
		{"zzzzzzzzz", ""},
	}

	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			if got := suggestCommand(test.input, commands); got != test.want {
				t.Errorf("suggestCommand(%q) = %q, want %q", test.input, got, test.want)
			}
		})
	}
}

func TestSuggestFlag(t *testing.T) {
	newFlagSet := func() *pflag.FlagSet {
		flagSet := pflag.NewFlagSet("assign", pflag.ContinueOnError)
		flagSet.Bool("dry-run", false, "")
		flagSet.Duration("timeout", 0, "")
		flagSet.BoolP("verbose", "v", false, "")
		return flagSet
	}

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"typo", []string{"--dry-rn"}, "--dry-run"},
		{"with value", []string{"--timout=5s"}, "--timeout"},
		{"single dash long name", []string{"-timeout", "5s"}, "--timeout"},
		{"known flags skipped", []string{"-v", "--dry-run", "--timeotu"}, "--timeout"},
		{"nothing close", []string{"--zzzzzzzz"}, ""},
		{"after terminator", []string{"--", "--dry-rn"}, ""},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := suggestFlag(test.args, newFlagSet()); got != test.want {
				t.Errorf("suggestFlag(%v) = %q, want %q", test.args, got, test.want)
			}
		})
	}
}
