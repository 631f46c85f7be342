package vcard

import (
	"errors"
	"reflect"
	"testing"
)

func TestPrepare(t *testing.T) {
	tests := []struct {
		name    string
		input   []Property
		version Version
		want    []Property
		wantErr error
	}{
		{
			name:    "2.1 repairs N from FN",
			input:   []Property{{"FN", "Jane"}},
			version: Version21,
			want:    []Property{{"FN", "Jane"}, {"N", "Jane"}},
		},
		{
			name:    "2.1 without N or FN fails",
			input:   nil,
			version: Version21,
			wantErr: ErrMissingMandatoryField,
		},
		{
			name:    "2.1 with empty FN fails",
			input:   []Property{{"FN", ""}, {"TEL", "+1"}},
			version: Version21,
			wantErr: ErrMissingMandatoryField,
		},
		{
			name:    "2.1 empty N is replaced in place",
			input:   []Property{{"N", ""}, {"FN", "Jane"}},
			version: Version21,
			want:    []Property{{"N", "Jane"}, {"FN", "Jane"}},
		},
		{
			name:    "2.1 keeps existing N",
			input:   []Property{{"FN", "Jane Roe"}, {"N", "Roe;Jane;;;"}},
			version: Version21,
			want:    []Property{{"FN", "Jane Roe"}, {"N", "Roe;Jane;;;"}},
		},
		{
			name: "2.1 prunes denied keys including parameterised ones",
			input: []Property{
				{"FN", "Jane"}, {"N", "Roe;Jane;;;"}, {"GENDER", "F"}, {"IMPP;TYPE=home", "xmpp"},
				{"NICKNAME", "JJ"}, {"TEL", "+1"},
			},
			version: Version21,
			want:    []Property{{"FN", "Jane"}, {"N", "Roe;Jane;;;"}, {"TEL", "+1"}},
		},
		{
			name: "3.0 prunes its deny list and keeps GENDER",
			input: []Property{
				{"FN", "Jane"}, {"KIND", "individual"}, {"LANG", "en"}, {"GENDER", "F"}, {"CATEGORIES", "x"},
			},
			version: Version30,
			want:    []Property{{"FN", "Jane"}, {"GENDER", "F"}},
		},
		{
			name:    "3.0 does not repair",
			input:   []Property{{"TEL", "+1"}},
			version: Version30,
			want:    []Property{{"TEL", "+1"}},
		},
		{
			name:    "4.0 prunes its deny list",
			input:   []Property{{"FN", "Jane"}, {"CLASS", "PUBLIC"}, {"KIND", "individual"}, {"MAILER", "x"}},
			version: Version40,
			want:    []Property{{"FN", "Jane"}, {"KIND", "individual"}},
		},
		{
			name:    "unknown version",
			input:   []Property{{"FN", "Jane"}},
			version: Version("5.0"),
			wantErr: ErrUnknownVersion,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := NewProperties(tt.input...)
			before := in.Clone()

			got, err := Prepare(in, tt.version)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Prepare() error = %v, want %v", err, tt.wantErr)
				}
				if got != nil {
					t.Errorf("Prepare() returned %v alongside error", got.Pairs())
				}
			} else {
				if err != nil {
					t.Fatalf("Prepare() error = %v", err)
				}
				if !reflect.DeepEqual(got.Pairs(), tt.want) {
					t.Errorf("Prepare() = %v, want %v", got.Pairs(), tt.want)
				}
			}
			if !in.Equal(before) {
				t.Errorf("Prepare() mutated its input: %v, was %v", in.Pairs(), before.Pairs())
			}
		})
	}
}

func TestPrepareIdempotent(t *testing.T) {
	in := NewProperties(
		Property{"FN", "Jane Roe"},
		Property{"GENDER", "F"},
		Property{"KIND", "individual"},
		Property{"CLASS", "PUBLIC"},
		Property{"TEL;TYPE=CELL", "+1"},
		Property{"ANNIVERSARY", "2010-06-01"},
	)
	for _, v := range Versions {
		once, err := Prepare(in, v)
		if err != nil {
			t.Fatalf("Prepare(%s) error = %v", v, err)
		}
		twice, err := Prepare(once, v)
		if err != nil {
			t.Fatalf("second Prepare(%s) error = %v", v, err)
		}
		if !once.Equal(twice) {
			t.Errorf("Prepare(%s) not idempotent: %v then %v", v, once.Pairs(), twice.Pairs())
		}
	}
}

func TestParseVersion(t *testing.T) {
	for _, s := range []string{"2.1", "3.0", "4.0", " 3.0 "} {
		if _, err := ParseVersion(s); err != nil {
			t.Errorf("ParseVersion(%q) error = %v", s, err)
		}
	}
	for _, s := range []string{"", "3", "5.0", "v3.0"} {
		if _, err := ParseVersion(s); !errors.Is(err, ErrUnknownVersion) {
			t.Errorf("ParseVersion(%q) error = %v, want ErrUnknownVersion", s, err)
		}
	}
}
