package common

import "testing"

func TestParseURI(t *testing.T) {
	cases := []struct {
		uri         string
		bucket, key string
		wantErr     bool
	}{
		{"s3://media/videos/bg.mp4", "media", "videos/bg.mp4", false},
		{"s3://media/a", "media", "a", false},
		{"s3://media/", "", "", true},
		{"s3:///key", "", "", true},
		{"https://media/a", "", "", true},
	}
	for _, c := range cases {
		bucket, key, err := ParseURI(c.uri)
		if (err != nil) != c.wantErr {
			t.Fatalf("ParseURI(%q) error = %v; wantErr %v", c.uri, err, c.wantErr)
		}
		if bucket != c.bucket || key != c.key {
			t.Fatalf("ParseURI(%q) = %q, %q; want %q, %q", c.uri, bucket, key, c.bucket, c.key)
		}
	}
}

func TestJoinKey(t *testing.T) {
	if got := JoinKey("/renders/", "a.mp4"); got != "renders/a.mp4" {
		t.Fatalf("JoinKey = %q", got)
	}
	if got := JoinKey("", "a.mp4"); got != "a.mp4" {
		t.Fatalf("JoinKey = %q", got)
	}
}
