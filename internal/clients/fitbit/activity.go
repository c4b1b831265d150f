package fitbit

import (
	"context"
	"fmt"
)

// DailySummary is one day of activity. RestingHR is nil when the heart
// endpoint has no value for the day.
type DailySummary struct {
	Steps         int
	ActiveMinutes int
	RestingHR     *int
}

// SleepSummary is the night's main sleep totals.
type SleepSummary struct {
	MinutesAsleep int
	Efficiency    int
}

// HeartRatePoint is one intraday sample; Time is HH:MM:SS.
type HeartRatePoint struct {
	Time  string `json:"time"`
	Value int    `json:"value"`
}

type activityResponse struct {
	Summary *struct {
		Steps               int `json:"steps"`
		FairlyActiveMinutes int `json:"fairlyActiveMinutes"`
		VeryActiveMinutes   int `json:"veryActiveMinutes"`
	} `json:"summary"`
}

type heartDayResponse struct {
	ActivitiesHeart []struct {
		Value struct {
			RestingHeartRate *int `json:"restingHeartRate"`
		} `json:"value"`
	} `json:"activities-heart"`
}

type heartIntradayResponse struct {
	Intraday struct {
		Dataset []HeartRatePoint `json:"dataset"`
	} `json:"activities-heart-intraday"`
}

type sleepResponse struct {
	Summary *struct {
		TotalMinutesAsleep int `json:"totalMinutesAsleep"`
		Efficiency         int `json:"efficiency"`
	} `json:"summary"`
}

// DailySummary reads steps and active minutes for date (YYYY-MM-DD), plus the
// resting heart rate when available. A failed heart call leaves RestingHR nil.
func (c *Client) DailySummary(ctx context.Context, accessToken, date string) (*DailySummary, error) {
	var act activityResponse
	if err := c.getJSON(ctx, accessToken, fmt.Sprintf("/1/user/-/activities/date/%s.json", date), &act); err != nil {
		return nil, err
	}
	if act.Summary == nil {
		return nil, fmt.Errorf("fitbit activity %s: no summary", date)
	}
	out := &DailySummary{
		Steps:         act.Summary.Steps,
		ActiveMinutes: act.Summary.FairlyActiveMinutes + act.Summary.VeryActiveMinutes,
	}

	var hr heartDayResponse
	if err := c.getJSON(ctx, accessToken, fmt.Sprintf("/1/user/-/activities/heart/date/%s/1d.json", date), &hr); err == nil {
		if len(hr.ActivitiesHeart) > 0 {
			out.RestingHR = hr.ActivitiesHeart[0].Value.RestingHeartRate
		}
	}
	return out, nil
}

// Sleep reads the sleep summary for the night ending on date.
func (c *Client) Sleep(ctx context.Context, accessToken, date string) (*SleepSummary, error) {
	var resp sleepResponse
	if err := c.getJSON(ctx, accessToken, fmt.Sprintf("/1.2/user/-/sleep/date/%s.json", date), &resp); err != nil {
		return nil, err
	}
	if resp.Summary == nil {
		return nil, fmt.Errorf("fitbit sleep %s: no summary", date)
	}
	return &SleepSummary{
		MinutesAsleep: resp.Summary.TotalMinutesAsleep,
		Efficiency:    resp.Summary.Efficiency,
	}, nil
}

// IntradayHeartRate returns the per-minute heart rate samples for date.
func (c *Client) IntradayHeartRate(ctx context.Context, accessToken, date string) ([]HeartRatePoint, error) {
	var resp heartIntradayResponse
	if err := c.getJSON(ctx, accessToken, fmt.Sprintf("/1/user/-/activities/heart/date/%s/1d/1min.json", date), &resp); err != nil {
		return nil, err
	}
	return resp.Intraday.Dataset, nil
}

// MinutesAbove counts samples with from <= Time <= to whose value is at least
// threshold. from and to are HH:MM:SS.
func MinutesAbove(points []HeartRatePoint, from, to string, threshold int) int {
	n := 0
	for _, p := range points {
		if p.Time < from || p.Time > to {
			continue
		}
		if p.Value >= threshold {
			n++
		}
	}
	return n
}
