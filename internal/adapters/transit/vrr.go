package transit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
	"traveltime-tiles/internal/domain"
)

const SourceVRR = "vrr"

var ErrUnsupportedCoordinate = errors.New("coordinate not supported by backend")

// Query parameters sent with every EFA request.
var vrrCommonParams = map[string]string{
	"outputFormat": "rapidJSON",
	"version":      "10.4.18.18",
}

type VRRConfig struct {
	TripURL       string
	StopFinderURL string
	Timeout       time.Duration
}

// VRRClient talks to the EFA rapidJSON interface of the VRR
// (Verkehrsverbund Rhein-Ruhr) journey planner.
type VRRClient struct {
	http          httpClient
	tripURL       string
	stopFinderURL string
}

func NewVRRClient(cfg VRRConfig) *VRRClient {
	return &VRRClient{
		http:          newHTTPClient(cfg.Timeout),
		tripURL:       cfg.TripURL,
		stopFinderURL: cfg.StopFinderURL,
	}
}

func (c *VRRClient) Source() string { return SourceVRR }

type vrrTripResponse struct {
	Journeys []struct {
		Legs []struct {
			Duration *int64 `json:"duration"`
		} `json:"legs"`
	} `json:"journeys"`
}

func (c *VRRClient) QueryBestDuration(
	ctx context.Context,
	origin domain.GeoCoordinate,
	destination domain.GeoCoordinate,
	when domain.TravelTime,
) (*domain.DurationResult, error) {
	if err := when.Validate(); err != nil {
		return nil, err
	}

	from, err := formatVRRCoordinate(origin)
	if err != nil {
		return nil, fmt.Errorf("origin: %w", err)
	}
	to, err := formatVRRCoordinate(destination)
	if err != nil {
		return nil, fmt.Errorf("destination: %w", err)
	}

	q := url.Values{}
	q.Set("name_origin", from)
	q.Set("type_origin", "coord")
	q.Set("name_destination", to)
	q.Set("type_destination", "coord")
	for k, v := range vrrCommonParams {
		q.Set(k, v)
	}
	if t, arrival, ok := when.Moment(); ok {
		q.Set("itdDate", t.Format("20060102"))
		q.Set("itdTime", t.Format("1504")+"h")
		if arrival {
			q.Set("itdTripDateTimeDepArr", "arr")
		} else {
			q.Set("itdTripDateTimeDepArr", "dep")
		}
	}

	var resp vrrTripResponse
	err = c.http.doJSON(ctx, func() (*http.Request, error) {
		return c.http.newRequest(ctx, http.MethodGet, c.tripURL+"?"+q.Encode(), nil)
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("vrr trip request: %w", err)
	}

	best, ok := bestVRRJourney(resp)
	if !ok {
		return nil, nil
	}
	return domain.NewDurationResult(best, SourceVRR), nil
}

// bestVRRJourney returns the shortest journey, where a journey lasts as
// long as the sum of its legs. Legs without a duration are skipped and
// journeys without any timed leg are ignored.
func bestVRRJourney(resp vrrTripResponse) (time.Duration, bool) {
	var (
		best  int64
		found bool
	)
	for _, j := range resp.Journeys {
		var (
			total int64
			timed bool
		)
		for _, leg := range j.Legs {
			if leg.Duration == nil {
				continue
			}
			total += *leg.Duration
			timed = true
		}
		if !timed {
			continue
		}
		if !found || total < best {
			best = total
			found = true
		}
	}
	return time.Duration(best) * time.Second, found
}

type vrrStopFinderResponse struct {
	Locations []json.RawMessage `json:"locations"`
}

// Search runs a free-text stop finder query and returns the matching
// locations as the backend reports them.
func (c *VRRClient) Search(ctx context.Context, query string) ([]domain.Location, error) {
	q := url.Values{}
	q.Set("name_sf", query)
	q.Set("type_sf", "any")
	q.Set("coordOutputFormat", "WGS84[dd.ddddd]")
	q.Set("doNotSearchForStops_sf", "1")
	q.Set("language", "de")
	q.Set("locationInfoActive", "1")
	q.Set("locationServerActive", "1")
	q.Set("sl3plusStopFinderMacro", "trip")
	q.Set("vrrStopFinderMacro", "1")
	for k, v := range vrrCommonParams {
		q.Set(k, v)
	}

	var resp vrrStopFinderResponse
	err := c.http.doJSON(ctx, func() (*http.Request, error) {
		return c.http.newRequest(ctx, http.MethodGet, c.stopFinderURL+"?"+q.Encode(), nil)
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("vrr stop finder request: %w", err)
	}

	out := make([]domain.Location, 0, len(resp.Locations))
	for _, l := range resp.Locations {
		out = append(out, domain.Location(l))
	}
	return out, nil
}

// formatVRRCoordinate renders a coordinate in EFA notation, longitude
// first. The EFA coordinate parser only handles the north-east quadrant.
func formatVRRCoordinate(c domain.GeoCoordinate) (string, error) {
	if c.Lat < 0 || c.Lng < 0 || c.Lat > 90 || c.Lng > 180 {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedCoordinate, c)
	}
	return fmt.Sprintf("%.5f:%.5f:WGS84[dd.ddddd]", c.Lng, c.Lat), nil
}
