package alphavantage

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"
)

// Overview is the flat COMPANY_OVERVIEW document; every value is a string.
type Overview map[string]string

type NewsResponse struct {
	Items string     `json:"items"`
	Feed  []NewsItem `json:"feed"`
}

type NewsItem struct {
	Title                 string            `json:"title"`
	URL                   string            `json:"url"`
	TimePublished         string            `json:"time_published"`
	Summary               string            `json:"summary"`
	Source                string            `json:"source"`
	OverallSentimentScore float64           `json:"overall_sentiment_score"`
	OverallSentimentLabel string            `json:"overall_sentiment_label"`
	TickerSentiment       []TickerSentiment `json:"ticker_sentiment"`
}

type TickerSentiment struct {
	Ticker               string `json:"ticker"`
	RelevanceScore       string `json:"relevance_score"`
	TickerSentimentScore string `json:"ticker_sentiment_score"`
	TickerSentimentLabel string `json:"ticker_sentiment_label"`
}

type EarningsResponse struct {
	Symbol            string             `json:"symbol"`
	AnnualEarnings    []AnnualEarning    `json:"annualEarnings"`
	QuarterlyEarnings []QuarterlyEarning `json:"quarterlyEarnings"`
}

type AnnualEarning struct {
	FiscalDateEnding string `json:"fiscalDateEnding"`
	ReportedEPS      string `json:"reportedEPS"`
}

type QuarterlyEarning struct {
	FiscalDateEnding   string `json:"fiscalDateEnding"`
	ReportedDate       string `json:"reportedDate"`
	ReportedEPS        string `json:"reportedEPS"`
	EstimatedEPS       string `json:"estimatedEPS"`
	Surprise           string `json:"surprise"`
	SurprisePercentage string `json:"surprisePercentage"`
	ReportTime         string `json:"reportTime"`
}

type Bar struct {
	Open   string `json:"1. open"`
	High   string `json:"2. high"`
	Low    string `json:"3. low"`
	Close  string `json:"4. close"`
	Volume string `json:"5. volume"`
}

// TimeSeries holds any TIME_SERIES_* document. The bar map key varies by
// function ("Time Series (Daily)", "Time Series (5min)", ...).
type TimeSeries struct {
	Meta map[string]string
	Bars map[string]Bar
}

func (ts *TimeSeries) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	for key, value := range raw {
		switch {
		case key == "Meta Data":
			if err := json.Unmarshal(value, &ts.Meta); err != nil {
				return err
			}
		case strings.HasPrefix(key, "Time Series"):
			if err := json.Unmarshal(value, &ts.Bars); err != nil {
				return err
			}
		}
	}
	return nil
}

// Location returns the series time zone from its metadata, or UTC.
func (ts *TimeSeries) Location() *time.Location {
	for key, value := range ts.Meta {
		if strings.HasSuffix(key, "Time Zone") {
			if loc, err := time.LoadLocation(value); err == nil {
				return loc
			}
		}
	}
	return time.UTC
}

type Point struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// Points parses the bars and returns them in ascending time order. Date-only
// keys are read as UTC midnight; timestamp keys use the series time zone.
// Bars that fail to parse are skipped.
func (ts *TimeSeries) Points() []Point {
	loc := ts.Location()
	points := make([]Point, 0, len(ts.Bars))
	for key, bar := range ts.Bars {
		t, err := parseSeriesTime(key, loc)
		if err != nil {
			continue
		}
		p := Point{
			Time:  t,
			Open:  parseFloat(bar.Open),
			High:  parseFloat(bar.High),
			Low:   parseFloat(bar.Low),
			Close: parseFloat(bar.Close),
		}
		p.Volume, _ = strconv.ParseInt(bar.Volume, 10, 64)
		points = append(points, p)
	}
	sort.Slice(points, func(i, j int) bool {
		return points[i].Time.Before(points[j].Time)
	})
	return points
}

func parseSeriesTime(key string, loc *time.Location) (time.Time, error) {
	if len(key) == len("2006-01-02") {
		return time.ParseInLocation("2006-01-02", key, time.UTC)
	}
	return time.ParseInLocation("2006-01-02 15:04:05", key, loc)
}

func parseFloat(s string) float64 {
	f, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f
}

type Quote struct {
	Symbol           string `json:"01. symbol"`
	Open             string `json:"02. open"`
	High             string `json:"03. high"`
	Low              string `json:"04. low"`
	Price            string `json:"05. price"`
	Volume           string `json:"06. volume"`
	LatestTradingDay string `json:"07. latest trading day"`
	PreviousClose    string `json:"08. previous close"`
	Change           string `json:"09. change"`
	ChangePercent    string `json:"10. change percent"`
}

type quoteResponse struct {
	Quote Quote `json:"Global Quote"`
}

type SearchMatch struct {
	Symbol      string `json:"1. symbol"`
	Name        string `json:"2. name"`
	Type        string `json:"3. type"`
	Region      string `json:"4. region"`
	MarketOpen  string `json:"5. marketOpen"`
	MarketClose string `json:"6. marketClose"`
	Timezone    string `json:"7. timezone"`
	Currency    string `json:"8. currency"`
	MatchScore  string `json:"9. matchScore"`
}

type searchResponse struct {
	BestMatches []SearchMatch `json:"bestMatches"`
}

// CSVTable is a header row plus data rows from a CSV function.
type CSVTable struct {
	Header []string
	Rows   [][]string
}

// Value returns nil for the provider's empty markers ("", "None", "-").
func Value(s string) *string {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "none", "-", "null", "n/a":
		return nil
	}
	return &s
}
