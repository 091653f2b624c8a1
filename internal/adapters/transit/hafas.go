package transit

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"
	"traveltime-tiles/internal/domain"
)

const SourceHAFAS = "hafas"

// Regional, suburban, bus, ferry, subway and tram in the DB product
// numbering. Long distance trains and taxis are excluded.
const hafasRegionalProducts = 4 | 8 | 16 | 32 | 64 | 128 | 256

// mgate error codes that mean the search ran but found nothing.
var hafasNoRouteCodes = map[string]bool{
	"H890":  true,
	"H891":  true,
	"H892":  true,
	"H895":  true,
	"H9220": true,
	"H9240": true,
}

type HAFASConfig struct {
	URL        string
	Salt       string
	ClientID   string
	ClientType string
	ClientName string
	AuthAID    string
	Version    string
	Ext        string
	Timeout    time.Duration
}

// HAFASClient runs TripSearch requests against a HAFAS mgate endpoint.
type HAFASClient struct {
	http httpClient
	cfg  HAFASConfig
}

func NewHAFASClient(cfg HAFASConfig) *HAFASClient {
	if cfg.ClientType == "" {
		cfg.ClientType = "AND"
	}
	return &HAFASClient{http: newHTTPClient(cfg.Timeout), cfg: cfg}
}

func (c *HAFASClient) Source() string { return SourceHAFAS }

type hafasLocation struct {
	Type string `json:"type"`
	Name string `json:"name"`
	Lid  string `json:"lid"`
}

type hafasFilter struct {
	Type  string `json:"type"`
	Mode  string `json:"mode"`
	Value string `json:"value"`
}

type hafasTripSearch struct {
	DepLocL     []hafasLocation `json:"depLocL"`
	ArrLocL     []hafasLocation `json:"arrLocL"`
	ViaLocL     []hafasLocation `json:"viaLocL"`
	OutDate     string          `json:"outDate,omitempty"`
	OutTime     string          `json:"outTime,omitempty"`
	OutFrwd     bool            `json:"outFrwd"`
	JnyFltrL    []hafasFilter   `json:"jnyFltrL"`
	MinChgTime  int             `json:"minChgTime"`
	MaxChg      int             `json:"maxChg"`
	NumF        int             `json:"numF"`
	GetPasslist bool            `json:"getPasslist"`
}

type hafasServiceRequest struct {
	Meth string          `json:"meth"`
	Req  hafasTripSearch `json:"req"`
}

type hafasRequest struct {
	Lang    string                `json:"lang"`
	SvcReqL []hafasServiceRequest `json:"svcReqL"`
	Client  map[string]string     `json:"client"`
	Ext     string                `json:"ext,omitempty"`
	Ver     string                `json:"ver,omitempty"`
	Auth    map[string]string     `json:"auth"`
}

type hafasResponse struct {
	Err     string `json:"err"`
	ErrTxt  string `json:"errTxt"`
	SvcResL []struct {
		Err    string `json:"err"`
		ErrTxt string `json:"errTxt"`
		Res    struct {
			OutConL []struct {
				Dur string `json:"dur"`
			} `json:"outConL"`
		} `json:"res"`
	} `json:"svcResL"`
}

func (c *HAFASClient) QueryBestDuration(
	ctx context.Context,
	origin domain.GeoCoordinate,
	destination domain.GeoCoordinate,
	when domain.TravelTime,
) (*domain.DurationResult, error) {
	if err := when.Validate(); err != nil {
		return nil, err
	}

	search := hafasTripSearch{
		DepLocL:  []hafasLocation{hafasAddress(origin)},
		ArrLocL:  []hafasLocation{hafasAddress(destination)},
		ViaLocL:  []hafasLocation{},
		OutFrwd:  true,
		JnyFltrL: []hafasFilter{{Type: "PROD", Mode: "INC", Value: strconv.Itoa(hafasRegionalProducts)}},
		MaxChg:   -1,
		NumF:     5,
	}
	if t, arrival, ok := when.Moment(); ok {
		search.OutDate = t.Format("20060102")
		search.OutTime = t.Format("150405")
		search.OutFrwd = !arrival
	}

	body, err := json.Marshal(hafasRequest{
		Lang:    "de",
		SvcReqL: []hafasServiceRequest{{Meth: "TripSearch", Req: search}},
		Client: map[string]string{
			"id":   c.cfg.ClientID,
			"type": c.cfg.ClientType,
			"name": c.cfg.ClientName,
		},
		Ext:  c.cfg.Ext,
		Ver:  c.cfg.Version,
		Auth: map[string]string{"type": "AID", "aid": c.cfg.AuthAID},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal hafas request: %w", err)
	}

	endpoint := c.cfg.URL
	if c.cfg.Salt != "" {
		endpoint += "?checksum=" + url.QueryEscape(hafasChecksum(body, c.cfg.Salt))
	}

	var resp hafasResponse
	err = c.http.doJSON(ctx, func() (*http.Request, error) {
		return c.http.newRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("hafas trip search: %w", err)
	}

	if resp.Err != "" && resp.Err != "OK" {
		return nil, fmt.Errorf("hafas: %s %s", resp.Err, resp.ErrTxt)
	}
	if len(resp.SvcResL) == 0 {
		return nil, fmt.Errorf("hafas: empty service response")
	}
	svc := resp.SvcResL[0]
	if svc.Err != "" && svc.Err != "OK" {
		if hafasNoRouteCodes[svc.Err] {
			return nil, nil
		}
		return nil, fmt.Errorf("hafas: %s %s", svc.Err, svc.ErrTxt)
	}

	var (
		best  time.Duration
		found bool
	)
	for _, con := range svc.Res.OutConL {
		d, err := parseHAFASDuration(con.Dur)
		if err != nil {
			return nil, err
		}
		if !found || d < best {
			best = d
			found = true
		}
	}
	if !found {
		return nil, nil
	}
	return domain.NewDurationResult(best, SourceHAFAS), nil
}

// hafasAddress encodes a coordinate as an address location. Coordinates
// are given in micro degrees.
func hafasAddress(c domain.GeoCoordinate) hafasLocation {
	x := strconv.FormatInt(int64(math.Round(c.Lng*1e6)), 10)
	y := strconv.FormatInt(int64(math.Round(c.Lat*1e6)), 10)
	return hafasLocation{
		Type: "A",
		Lid:  "A=2@O=@X=" + x + "@Y=" + y + "@",
	}
}

func hafasChecksum(body []byte, salt string) string {
	sum := md5.Sum(append(append([]byte{}, body...), salt...))
	return hex.EncodeToString(sum[:])
}

// parseHAFASDuration parses "HHMMSS" or "DDHHMMSS".
func parseHAFASDuration(s string) (time.Duration, error) {
	var days int
	switch len(s) {
	case 6:
	case 8:
		n, err := strconv.Atoi(s[:2])
		if err != nil {
			return 0, fmt.Errorf("hafas duration %q: %w", s, err)
		}
		days = n
		s = s[2:]
	default:
		return 0, fmt.Errorf("hafas duration %q: unexpected length", s)
	}

	var parts [3]int
	for i := range parts {
		n, err := strconv.Atoi(s[2*i : 2*i+2])
		if err != nil {
			return 0, fmt.Errorf("hafas duration %q: %w", s, err)
		}
		parts[i] = n
	}

	return time.Duration(days)*24*time.Hour +
		time.Duration(parts[0])*time.Hour +
		time.Duration(parts[1])*time.Minute +
		time.Duration(parts[2])*time.Second, nil
}
