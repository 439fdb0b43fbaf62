package ecard

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"regexp"
	"strconv"
	"time"

	"github.com/Paulkm2006/hust-ledger-back/internal/domain"
)

const (
	// DefaultBaseURL is the production card service endpoint.
	DefaultBaseURL = "http://ecard.m.hust.edu.cn"
	// DefaultPassURL is the SSO host the auth-token cookie belongs to.
	DefaultPassURL = "https://pass.hust.edu.cn"

	sessionPath = "/wechat-web/QueryController/Queryurl.html"
	queryPath   = "/wechat-web/QueryController/select.html"

	// The service answers with a fixed 9-byte header and one trailing byte
	// wrapped around the JSON payload.
	envelopePrefixLen = 9
	envelopeSuffixLen = 1
)

var sessionIDPattern = regexp.MustCompile(`jsessionid=(.*)`)

var defaultHeaders = map[string]string{
	"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/58.0.3029.110 Safari/537.3",
	"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
	"Accept-Language": "zh-CN,zh;q=0.8",
	"Connection":      "keep-alive",
}

// Client implements API against the real card service.
type Client struct {
	baseURL string
	passURL string
	timeout time.Duration
}

// NewClient builds a client for the service at baseURL. Empty arguments fall
// back to the production endpoints.
func NewClient(baseURL, passURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if passURL == "" {
		passURL = DefaultPassURL
	}
	return &Client{baseURL: baseURL, passURL: passURL, timeout: 30 * time.Second}
}

// NewSession exchanges the auth token for a card-service session. The token
// is presented as an SSO cookie; the service redirects through SSO and lands
// on a URL carrying the session id, which becomes the session cookie for all
// page fetches.
func (c *Client) NewSession(ctx context.Context, token string) (Session, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	passURL, err := url.Parse(c.passURL)
	if err != nil {
		return nil, fmt.Errorf("parse pass url: %w", err)
	}
	jar.SetCookies(passURL, []*http.Cookie{{Name: "CASTGC", Value: token}})

	httpClient := &http.Client{Jar: jar, Timeout: c.timeout}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+sessionPath, nil)
	if err != nil {
		return nil, err
	}
	applyHeaders(req)

	res, err := httpClient.Do(req)
	if err != nil {
		return nil, &domain.AuthError{Reason: err.Error()}
	}
	defer res.Body.Close()
	io.Copy(io.Discard, res.Body)

	matches := sessionIDPattern.FindStringSubmatch(res.Request.URL.String())
	if len(matches) < 2 || matches[1] == "" {
		return nil, &domain.AuthError{Reason: "session redirect carried no session id; token likely expired"}
	}

	baseURL, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	jar.SetCookies(baseURL, []*http.Cookie{{Name: "JSESSIONID", Value: matches[1]}})

	return &session{client: httpClient, queryURL: c.baseURL + queryPath}, nil
}

type session struct {
	client   *http.Client
	queryURL string
}

// FetchPage requests one transaction page and validates the envelope into a
// typed Page. A non-zero upstream return code becomes a CardSystemError.
func (s *session) FetchPage(ctx context.Context, pr PageRequest) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.queryURL, nil)
	if err != nil {
		return nil, err
	}
	applyHeaders(req)

	q := req.URL.Query()
	q.Set("account", pr.Account)
	q.Set("curpage", pr.Cursor)
	q.Set("typeStatus", "1")
	q.Set("dateStatus", pr.DateFilter)
	req.URL.RawQuery = q.Encode()

	res, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch transaction page: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read transaction page: %w", err)
	}

	return parseEnvelope(body)
}

func applyHeaders(req *http.Request) {
	for k, v := range defaultHeaders {
		req.Header.Set(k, v)
	}
}

// envelope mirrors the upstream payload. Every field arrives as a string.
type envelope struct {
	RetCode  string `json:"retcode"`
	ErrMsg   string `json:"errmsg"`
	NextPage string `json:"nextpage"`
	Total    []struct {
		OccTime     string `json:"occtime"`
		MercName    string `json:"mercname"`
		MercAcc     string `json:"mercacc"`
		TranAmt     string `json:"tranamt"`
		SignTranAmt string `json:"sign_tranamt"`
		CardBal     string `json:"cardbal"`
	} `json:"total"`
}

func parseEnvelope(body []byte) (*Page, error) {
	if len(body) <= envelopePrefixLen+envelopeSuffixLen {
		return nil, &domain.ParseError{Field: "envelope", Err: fmt.Errorf("response too short (%d bytes)", len(body))}
	}
	payload := body[envelopePrefixLen : len(body)-envelopeSuffixLen]

	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, &domain.ParseError{Field: "envelope", Err: err}
	}

	if env.RetCode == "" {
		return nil, &domain.ParseError{Field: "retcode"}
	}
	if env.RetCode != "0" {
		return nil, &domain.CardSystemError{Message: env.ErrMsg}
	}
	if env.NextPage == "" {
		return nil, &domain.ParseError{Field: "nextpage"}
	}

	page := &Page{
		NextCursor:   env.NextPage,
		Transactions: make([]Transaction, 0, len(env.Total)),
	}

	for i, row := range env.Total {
		if i == 0 && row.CardBal != "" {
			bal, err := parseMinor("cardbal", row.CardBal)
			if err != nil {
				return nil, err
			}
			page.BalanceMinor = bal
			page.HasBalance = true
		}

		occ, err := parseMinor("occtime", row.OccTime)
		if err != nil {
			return nil, err
		}
		amount, err := parseMinor("tranamt", row.TranAmt)
		if err != nil {
			return nil, err
		}
		sign, err := parseMinor("sign_tranamt", row.SignTranAmt)
		if err != nil {
			return nil, err
		}
		if row.MercName == "" {
			return nil, &domain.ParseError{Field: "mercname"}
		}

		page.Transactions = append(page.Transactions, Transaction{
			Time:        row.OccTime,
			Clock:       occ % 1000000,
			Merchant:    row.MercName,
			MerchantID:  row.MercAcc,
			AmountMinor: amount,
			TopUp:       sign > 0,
		})
	}

	return page, nil
}

func parseMinor(field, s string) (int64, error) {
	if s == "" {
		return 0, &domain.ParseError{Field: field}
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, &domain.ParseError{Field: field, Err: err}
	}
	return v, nil
}

var _ API = (*Client)(nil)
