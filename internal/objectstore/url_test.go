package objectstore

import "testing"

func TestPathFromDownloadURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		want    string
		wantOK  bool
		wantErr bool
	}{
		{
			name:   "firebase download url",
			url:    "https://firebasestorage.googleapis.com/v0/b/shop.appspot.com/o/live_streams%2Fs1.mp4?alt=media&token=abc",
			want:   "live_streams/s1.mp4",
			wantOK: true,
		},
		{
			name:   "no query string",
			url:    "https://host/v0/b/bucket/o/live_streams%2Fs2%2Fpart%201.mp4",
			want:   "live_streams/s2/part 1.mp4",
			wantOK: true,
		},
		{
			name:   "only first marker is used",
			url:    "https://host/o/a%2Fo%2Fb.mp4?x=/o/",
			want:   "a/o/b.mp4",
			wantOK: true,
		},
		{
			name:   "plus is kept literally",
			url:    "https://host/o/a+b.mp4",
			want:   "a+b.mp4",
			wantOK: true,
		},
		{name: "no marker", url: "https://cdn.example.com/videos/s1.mp4"},
		{name: "empty path", url: "https://host/o/?alt=media"},
		{name: "empty url", url: ""},
		{name: "bad escape", url: "https://host/o/live_streams%2", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, err := PathFromDownloadURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("PathFromDownloadURL(%q) = %q, %v; want %q, %v", tt.url, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
