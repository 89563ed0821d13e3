package resolve

import (
	"context"
	"fmt"
	"strings"
	"sync"

	ytdlp "github.com/lrstanley/go-ytdlp"
)

type extractedFormat struct {
	URL string `json:"url"`
}

type extractedEntry struct {
	ID               string            `json:"id"`
	Title            string            `json:"title"`
	Duration         float64           `json:"duration"`
	IsLive           bool              `json:"is_live"`
	Thumbnail        string            `json:"thumbnail"`
	WebpageURL       string            `json:"webpage_url"`
	URL              string            `json:"url"`
	Formats          []extractedFormat `json:"formats"`
	RequestedFormats []extractedFormat `json:"requested_formats"`
}

// ExtractedInfo is the subset of yt-dlp's JSON dump the resolver needs:
// enough to pick a playable URL and classify liveness.
type ExtractedInfo struct {
	extractedEntry
	Entries []extractedEntry `json:"entries"`
}

var installOnce sync.Once

func strOf(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func floatOf(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

func boolOf(p *bool) bool {
	if p == nil {
		return false
	}
	return *p
}

// lastThumb picks the highest quality thumbnail; yt-dlp orders them
// ascending.
func lastThumb(ts []*ytdlp.ExtractedThumbnail) string {
	for i := len(ts) - 1; i >= 0; i-- {
		if ts[i] != nil && ts[i].URL != "" {
			return ts[i].URL
		}
	}
	return ""
}

func mapFormats(fs []*ytdlp.ExtractedFormat) []extractedFormat {
	if len(fs) == 0 {
		return nil
	}
	out := make([]extractedFormat, 0, len(fs))
	for _, f := range fs {
		if f == nil {
			continue
		}
		out = append(out, extractedFormat{URL: f.URL})
	}
	return out
}

func entryOf(e *ytdlp.ExtractedInfo) extractedEntry {
	return extractedEntry{
		ID:               e.ID,
		Title:            strOf(e.Title),
		Duration:         floatOf(e.Duration),
		IsLive:           boolOf(e.IsLive),
		Thumbnail:        lastThumb(e.Thumbnails),
		WebpageURL:       strOf(e.WebpageURL),
		URL:              strOf(e.URL),
		Formats:          mapFormats(e.Formats),
		RequestedFormats: mapFormats(e.RequestedFormats),
	}
}

// ExtractInfo runs yt-dlp -J against target and maps the result.
func ExtractInfo(ctx context.Context, target string) (*ExtractedInfo, error) {
	installOnce.Do(func() {
		ytdlp.MustInstall(ctx, nil)
	})

	cmd := ytdlp.New().
		Format("best*[protocol^=m3u8]/best").
		NoCheckCertificates().
		DumpJSON()

	res, err := cmd.Run(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("yt-dlp run: %w", err)
	}

	infos, err := res.GetExtractedInfo()
	if err != nil {
		return nil, fmt.Errorf("parse yt-dlp json: %w", err)
	}
	if len(infos) == 0 || infos[0] == nil {
		return nil, fmt.Errorf("parse yt-dlp json: no info returned")
	}
	ext := infos[0]
	out := &ExtractedInfo{}

	// Playlist/search container: mirror the first entry to top level.
	if len(ext.Entries) > 0 {
		out.Entries = make([]extractedEntry, 0, len(ext.Entries))
		for _, e := range ext.Entries {
			if e == nil {
				continue
			}
			out.Entries = append(out.Entries, entryOf(e))
		}
		if len(out.Entries) > 0 {
			out.extractedEntry = out.Entries[0]
		}
		return out, nil
	}

	out.extractedEntry = entryOf(ext)
	return out, nil
}

// PlayableURL picks the best playable URL from an extraction. Requested
// formats are preferred, then the top-level URL, then raw formats.
func PlayableURL(info *ExtractedInfo) string {
	for _, rf := range info.RequestedFormats {
		if strings.HasPrefix(rf.URL, "http") {
			return rf.URL
		}
	}
	if strings.HasPrefix(info.URL, "http") {
		return info.URL
	}
	for _, f := range info.Formats {
		if strings.HasPrefix(f.URL, "http") {
			return f.URL
		}
	}
	return info.WebpageURL
}
