package archive

import "testing"

func TestTypeOf(t *testing.T) {
	tests := []struct {
		path string
		want Type
	}{
		{"/data/book.rar", RAR},
		{"/data/BOOK.RAR", RAR},
		{"comics.Zip", ZIP},
		{"set.7z", S7Z},
		{"set.7Z", S7Z},
		{"notes.txt", Unknown},
		{"noext", Unknown},
		{"", Unknown},
		{"archive.tar.gz", Unknown},
	}
	for _, tt := range tests {
		if got := TypeOf(tt.path); got != tt.want {
			t.Errorf("TypeOf(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestParseType(t *testing.T) {
	tests := map[string]Type{
		"zip":   ZIP,
		".ZIP":  ZIP,
		"7z":    S7Z,
		"s7z":   S7Z,
		"rar":   RAR,
		"tar":   Unknown,
		"":      Unknown,
		" Rar ": RAR,
	}
	for input, want := range tests {
		if got := ParseType(input); got != want {
			t.Errorf("ParseType(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestExtAndString(t *testing.T) {
	if RAR.Ext() != ".rar" || ZIP.Ext() != ".zip" || S7Z.Ext() != ".7z" {
		t.Fatalf("unexpected extensions: %q %q %q", RAR.Ext(), ZIP.Ext(), S7Z.Ext())
	}
	if Unknown.Ext() != "" {
		t.Fatalf("expected empty extension for Unknown, got %q", Unknown.Ext())
	}
	if S7Z.String() != "S7Z" || Unknown.String() != "UNKNOWN" {
		t.Fatalf("unexpected names: %s %s", S7Z, Unknown)
	}
}

func TestBaseName(t *testing.T) {
	tests := map[string]string{
		"/data/RAR archive.rar": "RAR archive",
		"set.tar.gz":            "set.tar",
		"plain":                 "plain",
		"/x/.hidden":            ".hidden",
	}
	for input, want := range tests {
		if got := BaseName(input); got != want {
			t.Errorf("BaseName(%q) = %q, want %q", input, got, want)
		}
	}
}
