package core

import (
	"errors"
	"reflect"
	"testing"
)

func TestDecodeText(t *testing.T) {
	tests := []struct {
		name    string
		input   []byte
		want    string
		wantErr error
	}{
		{
			name:  "plain utf-8",
			input: []byte("station,mileage\nShell,100\n"),
			want:  "station,mileage\nShell,100\n",
		},
		{
			name:  "utf-8 bom stripped",
			input: []byte("\xef\xbb\xbfstation,mileage\nShell,100\n"),
			want:  "station,mileage\nShell,100\n",
		},
		{
			name:  "windows-1252 fallback",
			input: []byte("station,city\nCaf\xe9,Montr\xe9al\n"),
			want:  "station,city\nCafé,Montréal\n",
		},
		{
			name:    "empty input",
			input:   []byte(""),
			wantErr: ErrEmptyFile,
		},
		{
			name:    "whitespace only",
			input:   []byte(" \n\t\n"),
			wantErr: ErrEmptyFile,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeText(tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("DecodeText() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeText() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("DecodeText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseCSV(t *testing.T) {
	t.Run("comma delimited", func(t *testing.T) {
		got, err := ParseCSV("station,city,mileage\nShell,Austin,1000\nBP,Dallas,1300\n")
		if err != nil {
			t.Fatalf("ParseCSV() error = %v", err)
		}
		if got.Delimiter != ',' {
			t.Errorf("Delimiter = %q, want ','", got.Delimiter)
		}
		if !reflect.DeepEqual(got.Headers, []string{"station", "city", "mileage"}) {
			t.Errorf("Headers = %v", got.Headers)
		}
		if len(got.Rows) != 2 {
			t.Fatalf("len(Rows) = %d, want 2", len(got.Rows))
		}
		if got.Rows[1].Get("city") != "Dallas" {
			t.Errorf("Rows[1].city = %q, want %q", got.Rows[1].Get("city"), "Dallas")
		}
		if got.Rows[0].Line != 2 || got.Rows[1].Line != 3 {
			t.Errorf("Lines = %d,%d, want 2,3", got.Rows[0].Line, got.Rows[1].Line)
		}
	})

	t.Run("tab delimited with quotes", func(t *testing.T) {
		got, err := ParseCSV("\"Gas Station\"\t\"Mileage\"\n\"Shell\"\t\" 1000 \"\n")
		if err != nil {
			t.Fatalf("ParseCSV() error = %v", err)
		}
		if got.Delimiter != '\t' {
			t.Errorf("Delimiter = %q, want tab", got.Delimiter)
		}
		if v := got.Rows[0].Get("Mileage"); v != " 1000 " {
			t.Errorf("Mileage = %q, want %q", v, " 1000 ")
		}
		if v := got.Rows[0].Get("Gas Station"); v != "Shell" {
			t.Errorf("Gas Station = %q, want %q", v, "Shell")
		}
	})

	t.Run("short rows skipped", func(t *testing.T) {
		got, err := ParseCSV("a,b,c\n1,2,3\n1,2\n\n4,5,6,7\n")
		if err != nil {
			t.Fatalf("ParseCSV() error = %v", err)
		}
		if len(got.Rows) != 2 {
			t.Errorf("len(Rows) = %d, want 2", len(got.Rows))
		}
		if got.Skipped != 1 {
			t.Errorf("Skipped = %d, want 1", got.Skipped)
		}
		if got.Rows[1].Line != 5 {
			t.Errorf("Rows[1].Line = %d, want 5 (blank lines count)", got.Rows[1].Line)
		}
	})

	t.Run("metadata and empty headers dropped", func(t *testing.T) {
		got, err := ParseCSV("station,,_source_file,mileage\nShell,x,export.csv,10\n")
		if err != nil {
			t.Fatalf("ParseCSV() error = %v", err)
		}
		if !reflect.DeepEqual(got.Headers, []string{"station", "mileage"}) {
			t.Errorf("Headers = %v, want [station mileage]", got.Headers)
		}
		if _, ok := got.Rows[0].Values["_source_file"]; ok {
			t.Error("row should not carry _source_file")
		}
	})

	t.Run("crlf line endings", func(t *testing.T) {
		got, err := ParseCSV("station,mileage\r\nShell,10\r\n")
		if err != nil {
			t.Fatalf("ParseCSV() error = %v", err)
		}
		if v := got.Rows[0].Get("mileage"); v != "10" {
			t.Errorf("mileage = %q, want %q", v, "10")
		}
	})

	t.Run("header only", func(t *testing.T) {
		_, err := ParseCSV("station,mileage\n\n")
		var fe *FormatError
		if !errors.As(err, &fe) {
			t.Fatalf("ParseCSV() error = %v, want *FormatError", err)
		}
	})

	t.Run("reparse is stable", func(t *testing.T) {
		text := "station,mileage\nShell,10\nshort\nBP,20\n"
		a, _ := ParseCSV(text)
		b, _ := ParseCSV(text)
		if !reflect.DeepEqual(a, b) {
			t.Errorf("ParseCSV() not deterministic: %+v vs %+v", a, b)
		}
	})
}
