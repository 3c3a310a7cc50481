package minio

import "testing"

func TestMinio_ObjectURL(t *testing.T) {
	tt := []struct {
		publicURL string
		bucket    string
		path      string
		want      string
	}{
		{"https://cdn.example.org", "attachments", "2026/10/18/x.png", "https://cdn.example.org/attachments/2026/10/18/x.png"},
		{"https://cdn.example.org/", "attachments", "/x.png", "https://cdn.example.org/attachments/x.png"},
	}

	for _, tc := range tt {
		m := New(t.Context(), nil, tc.publicURL, 0)
		if got := m.ObjectURL(tc.bucket, tc.path); got != tc.want {
			t.Errorf("ObjectURL(%q, %q) = %q, want %q", tc.bucket, tc.path, got, tc.want)
		}
	}
}
