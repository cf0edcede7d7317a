// Package noaa discovers and downloads GOES ABI product files from the NOAA
// Open Data Dissemination buckets. Objects are keyed by product, year, day of
// year, and hour, with the scan start embedded in the filename; listing uses
// the buckets' anonymous ListObjectsV2 HTTP interface, so no cloud SDK or
// credentials are involved.
package noaa

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"time"

	"github.com/couchcryptid/goes-sonify-etl/internal/domain"
)

// scanStartRe matches the scan-start token of an ABI object key,
// e.g. "OR_ABI-L2-TPWC-M6_G19_s20262261201176_e..." -> 2026 day 226 12:01:17.6.
var scanStartRe = regexp.MustCompile(`_s(\d{4})(\d{3})(\d{2})(\d{2})(\d{2})(\d)_`)

// Client lists and downloads product objects for one satellite.
type Client struct {
	httpClient *http.Client
	baseURL    string
	scratchDir string
	logger     *slog.Logger
}

// NewClient creates a bucket client for a satellite ("goes16", "goes18",
// "goes19", ...). Downloads land in scratchDir.
func NewClient(satellite string, timeout time.Duration, scratchDir string, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL:    fmt.Sprintf("https://noaa-%s.s3.amazonaws.com", satellite),
		scratchDir: scratchDir,
		logger:     logger,
	}
}

// List enumerates product objects whose scan start falls inside
// [start, end), ordered by scan start. The bucket lays keys out one prefix
// per UTC hour, so the window is walked hour by hour.
func (c *Client) List(ctx context.Context, product string, start, end time.Time) ([]domain.AcquisitionRef, error) {
	if !end.After(start) {
		return nil, fmt.Errorf("list %s: window end %s not after start %s", product, end, start)
	}

	var refs []domain.AcquisitionRef
	for hour := start.UTC().Truncate(time.Hour); hour.Before(end); hour = hour.Add(time.Hour) {
		prefix := fmt.Sprintf("%s/%04d/%03d/%02d/", product, hour.Year(), hour.YearDay(), hour.Hour())
		keys, err := c.listPrefix(ctx, prefix)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", prefix, err)
		}
		for _, key := range keys {
			scanStart, err := ParseScanStart(key)
			if err != nil {
				c.logger.Warn("skipping object with unparsable key", "key", key, "error", err)
				continue
			}
			if scanStart.Before(start) || !scanStart.Before(end) {
				continue
			}
			refs = append(refs, domain.AcquisitionRef{Key: key, ScanStart: scanStart})
		}
	}

	sort.Slice(refs, func(i, j int) bool { return refs[i].ScanStart.Before(refs[j].ScanStart) })
	return refs, nil
}

// Fetch downloads one object into the scratch directory and returns the
// local path. The caller owns the file and should remove it when done.
func (c *Client) Fetch(ctx context.Context, ref domain.AcquisitionRef) (string, error) {
	u := c.baseURL + "/" + ref.Key
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", ref.Key, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("fetch %s: status %d: %s", ref.Key, resp.StatusCode, body)
	}

	local := filepath.Join(c.scratchDir, path.Base(ref.Key))
	f, err := os.Create(local)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", local, err)
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(local)
		return "", fmt.Errorf("download %s: %w", ref.Key, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(local)
		return "", fmt.Errorf("close %s: %w", local, err)
	}
	return local, nil
}

// listBucketResult is the subset of the S3 ListObjectsV2 response we read.
type listBucketResult struct {
	Contents []struct {
		Key string `xml:"Key"`
	} `xml:"Contents"`
	IsTruncated           bool   `xml:"IsTruncated"`
	NextContinuationToken string `xml:"NextContinuationToken"`
}

// listPrefix pages through ListObjectsV2 for one key prefix.
func (c *Client) listPrefix(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	token := ""
	for {
		params := url.Values{
			"list-type": {"2"},
			"prefix":    {prefix},
		}
		if token != "" {
			params.Set("continuation-token", token)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/?"+params.Encode(), nil)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("list request: %w", err)
		}

		var result listBucketResult
		decodeErr := xml.NewDecoder(resp.Body).Decode(&result)
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("list request: status %d", resp.StatusCode)
		}
		if decodeErr != nil {
			return nil, fmt.Errorf("decode listing: %w", decodeErr)
		}

		for _, obj := range result.Contents {
			keys = append(keys, obj.Key)
		}
		if !result.IsTruncated || result.NextContinuationToken == "" {
			return keys, nil
		}
		token = result.NextContinuationToken
	}
}

// ParseScanStart extracts the scan-start timestamp from an ABI object key.
func ParseScanStart(key string) (time.Time, error) {
	m := scanStartRe.FindStringSubmatch(key)
	if m == nil {
		return time.Time{}, fmt.Errorf("key %q has no scan-start token", key)
	}

	// The regexp guarantees pure digits.
	year, _ := strconv.Atoi(m[1])
	doy, _ := strconv.Atoi(m[2])
	hh, _ := strconv.Atoi(m[3])
	mm, _ := strconv.Atoi(m[4])
	ss, _ := strconv.Atoi(m[5])
	tenths, _ := strconv.Atoi(m[6])

	t := time.Date(year, time.January, 1, hh, mm, ss, tenths*int(100*time.Millisecond), time.UTC)
	t = t.AddDate(0, 0, doy-1)
	if t.Year() != year {
		return time.Time{}, fmt.Errorf("key %q: day of year %d out of range", key, doy)
	}
	return t, nil
}
