package puzzle_test

import (
	"errors"
	"testing"

	"aoc/internal/puzzle"
)

func TestNewIdentityValidation(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		name    string
		year    int
		day     int
		part    puzzle.Part
		user    string
		wantErr error
	}{
		{name: "valid", year: 2015, day: 1, part: puzzle.PartA, user: "u1"},
		{name: "valid part b day 25", year: 2024, day: 25, part: puzzle.PartB, user: "u1"},
		{name: "year too early", year: 2014, day: 1, part: puzzle.PartA, user: "u1", wantErr: puzzle.ErrInvalidYear},
		{name: "day zero", year: 2015, day: 0, part: puzzle.PartA, user: "u1", wantErr: puzzle.ErrInvalidDay},
		{name: "day 26", year: 2015, day: 26, part: puzzle.PartA, user: "u1", wantErr: puzzle.ErrInvalidDay},
		{name: "bad part", year: 2015, day: 1, part: "c", user: "u1", wantErr: puzzle.ErrInvalidPart},
		{name: "empty user", year: 2015, day: 1, part: puzzle.PartA, user: "", wantErr: puzzle.ErrUserEmpty},
	} {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := puzzle.NewIdentity(tt.year, tt.day, tt.part, tt.user)

			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("NewIdentity() error = %v, want nil", err)
				}

				return
			}

			if !errors.Is(err, tt.wantErr) {
				t.Errorf("NewIdentity() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestIdentityString(t *testing.T) {
	t.Parallel()

	id, err := puzzle.NewIdentity(2015, 24, puzzle.PartA, "u1")
	if err != nil {
		t.Fatal(err)
	}

	if got, want := id.String(), "2015-24-a-u1"; got != want {
		t.Errorf("String()=%q, want=%q", got, want)
	}
}

func TestIdentityLevel(t *testing.T) {
	t.Parallel()

	a, _ := puzzle.NewIdentity(2015, 1, puzzle.PartA, "u")
	b, _ := puzzle.NewIdentity(2015, 1, puzzle.PartB, "u")

	if got, want := a.Level(), "1"; got != want {
		t.Errorf("part a Level()=%q, want=%q", got, want)
	}

	if got, want := b.Level(), "2"; got != want {
		t.Errorf("part b Level()=%q, want=%q", got, want)
	}
}

func TestParsePart(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		in      string
		want    puzzle.Part
		wantErr bool
	}{
		{in: "a", want: puzzle.PartA},
		{in: "B", want: puzzle.PartB},
		{in: "1", want: puzzle.PartA},
		{in: "2", want: puzzle.PartB},
		{in: " b ", want: puzzle.PartB},
		{in: "3", wantErr: true},
		{in: "", wantErr: true},
	} {
		got, err := puzzle.ParsePart(tt.in)

		if tt.wantErr {
			if err == nil {
				t.Errorf("ParsePart(%q) error = nil, want error", tt.in)
			}

			continue
		}

		if err != nil {
			t.Errorf("ParsePart(%q) error = %v", tt.in, err)

			continue
		}

		if got != tt.want {
			t.Errorf("ParsePart(%q)=%q, want=%q", tt.in, got, tt.want)
		}
	}
}

func TestCanonical(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		in   string
		want string
	}{
		{in: "42", want: "42"},
		{in: "  42\n", want: "42"},
		{in: "\tabc ", want: "abc"},
		{in: "   ", want: ""},
	} {
		if got := puzzle.Canonical(tt.in); got != tt.want {
			t.Errorf("Canonical(%q)=%q, want=%q", tt.in, got, tt.want)
		}
	}
}

func TestAsInt(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		in     string
		want   int64
		wantOK bool
	}{
		{in: "42", want: 42, wantOK: true},
		{in: " -7 ", want: -7, wantOK: true},
		{in: "0", want: 0, wantOK: true},
		{in: "abc", wantOK: false},
		{in: "3.14", wantOK: false},
		{in: "", wantOK: false},
	} {
		got, ok := puzzle.AsInt(tt.in)

		if ok != tt.wantOK {
			t.Errorf("AsInt(%q) ok=%v, want=%v", tt.in, ok, tt.wantOK)

			continue
		}

		if ok && got != tt.want {
			t.Errorf("AsInt(%q)=%d, want=%d", tt.in, got, tt.want)
		}
	}
}
