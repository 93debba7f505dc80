package checksum

import "testing"

func TestSumStable(t *testing.T) {
	if Sum([]byte("a")) != Sum([]byte("a")) {
		t.Error("sum not deterministic")
	}
	if Sum([]byte("a")) == Sum([]byte("b")) {
		t.Error("different inputs share a sum")
	}
	if got := Sum(nil); got != "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855" {
		t.Errorf("empty sum = %s", got)
	}
}

func TestMatchesIfNoneMatch(t *testing.T) {
	etag := ETag([]byte("x"))
	cases := []struct {
		header string
		want   bool
	}{
		{etag, true},
		{"W/" + etag, true},
		{`"other", ` + etag, true},
		{"*", true},
		{`"other"`, false},
		{"", false},
	}
	for _, tc := range cases {
		if got := MatchesIfNoneMatch(tc.header, etag); got != tc.want {
			t.Errorf("MatchesIfNoneMatch(%q) = %v, want %v", tc.header, got, tc.want)
		}
	}
}
