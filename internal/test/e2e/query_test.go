package e2e

import (
	"net/http"

	"github.com/tidwall/gjson"
)

// QueryE2ETestSuite drives the query endpoint end to end.
type QueryE2ETestSuite struct {
	QueryServiceE2ESuite
}

func (s *QueryE2ETestSuite) TestHealthEndpoint() {
	resp, err := http.Get(s.BaseURL + "/healthz")
	s.Require().NoError(err)
	defer resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)
}

func (s *QueryE2ETestSuite) TestWholeDocument() {
	resp, body := s.postQuery(`{}`)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal("Star Trek", gjson.Get(body, "result.vendor.name").String())
}

func (s *QueryE2ETestSuite) TestFilteredQuery() {
	resp, body := s.postQuery(`{
		"from": "vendor.items",
		"where": [[{"key": "price", "op": "=", "value": 850}]],
		"select": ["name"]
	}`)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal(int64(2), gjson.Get(body, "result.#").Int())
	s.Equal("Fujitsu", gjson.Get(body, "result.0.name").String())
}

func (s *QueryE2ETestSuite) TestCountTerminal() {
	resp, body := s.postQuery(`{"from": "vendor.items", "terminal": "count"}`)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal(int64(6), gjson.Get(body, "result").Int())
}

func (s *QueryE2ETestSuite) TestAggregate() {
	resp, body := s.postQuery(`{
		"from": "vendor.items",
		"aggregate": {"op": "avg", "property": "price"}
	}`)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.InDelta(1150.0, gjson.Get(body, "result").Float(), 0.001)
}

func (s *QueryE2ETestSuite) TestMissingPathReturnsNotFound() {
	resp, body := s.postQuery(`{"from": "vendor.warehouse"}`)
	s.Equal(http.StatusNotFound, resp.StatusCode)
	s.Contains(gjson.Get(body, "error").String(), "vendor.warehouse")
}

// Back-to-back narrowing queries prove request isolation: the second query
// still sees the full document.
func (s *QueryE2ETestSuite) TestRequestIsolation() {
	narrow := `{"from": "vendor.items", "limit": 1, "terminal": "count"}`
	full := `{"from": "vendor.items", "terminal": "count"}`

	resp, body := s.postQuery(narrow)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal(int64(1), gjson.Get(body, "result").Int())

	resp, body = s.postQuery(full)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal(int64(6), gjson.Get(body, "result").Int())
}
