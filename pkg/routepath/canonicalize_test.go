package routepath

import (
	"errors"
	"reflect"
	"testing"
)

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantPath    string
		wantQuery   string
		wantChanged bool
	}{
		{name: "root", input: "/", wantPath: "/"},
		{name: "empty string", input: "", wantPath: "/", wantChanged: true},
		{name: "no leading slash", input: "sobre", wantPath: "/sobre", wantChanged: true},
		{name: "trailing slash", input: "/sermoes/42/", wantPath: "/sermoes/42", wantChanged: true},
		{name: "collapse slashes", input: "/blog//post", wantPath: "/blog/post", wantChanged: true},
		{name: "single dot", input: "/blog/./post", wantPath: "/blog/post", wantChanged: true},
		{name: "double dot", input: "/blog/posts/../other", wantPath: "/blog/other", wantChanged: true},
		{name: "double dot to root", input: "/blog/../", wantPath: "/", wantChanged: true},
		{name: "query preserved", input: "/sermoes?tag=fe", wantPath: "/sermoes", wantQuery: "tag=fe"},
		{name: "query not validated", input: "/blog?q=%GG", wantPath: "/blog", wantQuery: "q=%GG"},
		{name: "valid escape", input: "/blog/ol%C3%A1", wantPath: "/blog/ol%C3%A1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Canonicalize(tt.input)
			if err != nil {
				t.Fatalf("Canonicalize(%q) error = %v", tt.input, err)
			}
			if got.Path != tt.wantPath {
				t.Errorf("Path = %q, want %q", got.Path, tt.wantPath)
			}
			if got.Query != tt.wantQuery {
				t.Errorf("Query = %q, want %q", got.Query, tt.wantQuery)
			}
			if got.Changed != tt.wantChanged {
				t.Errorf("Changed = %v, want %v", got.Changed, tt.wantChanged)
			}
		})
	}
}

func TestCanonicalizeErrors(t *testing.T) {
	tests := []struct {
		input string
		want  error
	}{
		{"/a\\b", ErrBackslashInPath},
		{"/a%00b", ErrNullByteInPath},
		{"/a\x00b", ErrNullByteInPath},
		{"/a%GG", ErrInvalidPercentEscape},
		{"/a%2", ErrInvalidPercentEscape},
		{"/../secret", ErrPathEscapesRoot},
	}

	for _, tt := range tests {
		_, err := Canonicalize(tt.input)
		if !errors.Is(err, tt.want) {
			t.Errorf("Canonicalize(%q) error = %v, want %v", tt.input, err, tt.want)
		}
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", "/"},
		{"/", "/"},
		{"/sermoes/42/", "/sermoes/42"},
		{"/sermoes/42", "/sermoes/42"},
		{"/blog?page=2", "/blog"},
		{"sobre/", "/sobre"},
		{"/a\\b/", "/a\\b"},
	}

	for _, tt := range tests {
		if got := Normalize(tt.input); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestValidateNavPath(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{input: "/sobre", want: "/sobre"},
		{input: "/blog/?q=x", want: "/blog?q=x"},
		{input: "sobre", wantErr: true},
		{input: "https://evil.example/", wantErr: true},
		{input: "http://evil.example/", wantErr: true},
		{input: "//evil.example/", wantErr: true},
		{input: "/../etc", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ValidateNavPath(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateNavPath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got.Full() != tt.want {
			t.Errorf("ValidateNavPath(%q) = %q, want %q", tt.input, got.Full(), tt.want)
		}
	}
}

func TestDecodeSegment(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr error
	}{
		{input: "123", want: "123"},
		{input: "ol%C3%A1", want: "olá"},
		{input: "a%20b", want: "a b"},
		{input: "a%2Fb", wantErr: ErrEncodedSlashInSegment},
		{input: "%ZZ", wantErr: ErrInvalidPercentEscape},
	}

	for _, tt := range tests {
		got, err := DecodeSegment(tt.input)
		if tt.wantErr != nil {
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("DecodeSegment(%q) error = %v, want %v", tt.input, err, tt.wantErr)
			}
			continue
		}
		if err != nil {
			t.Errorf("DecodeSegment(%q) unexpected error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("DecodeSegment(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestDecodeParam(t *testing.T) {
	tests := map[string]string{
		"123":      "123",
		"ol%C3%A1": "olá",
		"a%2Fb":    "a/b",
		"a%2fb":    "a/b",
	}
	for in, want := range tests {
		got, err := DecodeParam(in)
		if err != nil || got != want {
			t.Errorf("DecodeParam(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := DecodeParam("%ZZ"); !errors.Is(err, ErrInvalidPercentEscape) {
		t.Errorf("DecodeParam(%%ZZ) error = %v, want ErrInvalidPercentEscape", err)
	}
}

func TestSplit(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"/", nil},
		{"", nil},
		{"/sermoes", []string{"sermoes"}},
		{"/sermoes/:id", []string{"sermoes", ":id"}},
	}

	for _, tt := range tests {
		if got := Split(tt.input); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Split(%q) = %#v, want %#v", tt.input, got, tt.want)
		}
	}
}

func TestSplitAndJoinPathQuery(t *testing.T) {
	path, query := SplitPathAndQuery("/blog?page=2&q=a?b")
	if path != "/blog" || query != "page=2&q=a?b" {
		t.Fatalf("SplitPathAndQuery = (%q, %q)", path, query)
	}
	if got := JoinPathQuery(path, query); got != "/blog?page=2&q=a?b" {
		t.Errorf("JoinPathQuery = %q", got)
	}
	if got := JoinPathQuery("/blog", ""); got != "/blog" {
		t.Errorf("JoinPathQuery without query = %q", got)
	}
}
