package domain

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"
)

func TestRunReport_Finalize_SortAndSummaryAndUTC(t *testing.T) {
	r := RunReport{
		Root:       "/abs/path",
		Mode:       "copy",
		StartedAt:  time.Date(2026, 2, 9, 10, 0, 0, 0, time.FixedZone("X", 8*3600)),
		FinishedAt: time.Date(2026, 2, 9, 10, 0, 1, 0, time.FixedZone("X", 8*3600)),
		Summary:    ReportSummary{Total: 5, Skipped: 2},
		Errors: []string{
			"Failed to process 'b.txt': x",
			"Failed to process 'a.txt': y",
		},
	}

	r.Finalize()

	if r.Errors[0] != "Failed to process 'a.txt': y" {
		t.Fatalf("errors 未排序：%v", r.Errors)
	}
	// processed 沿用 total-skipped 口径，不扣除失败；succeeded 才扣除。
	if r.Summary.Processed != 3 || r.Summary.Failed != 2 || r.Summary.Succeeded != 1 {
		t.Fatalf("summary 统计不正确：%+v", r.Summary)
	}
	if r.Summary.Skipped+r.Summary.Processed != r.Summary.Total {
		t.Fatalf("skipped + processed 必须等于 total：%+v", r.Summary)
	}

	b, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("json.Marshal 失败：%v", err)
	}
	if len(b) == 0 || !bytes.Contains(b, []byte("\"started_at\":\"2026-02-09T02:00:00Z\"")) {
		t.Fatalf("started_at 不是 UTC RFC3339：%s", string(b))
	}
}

func TestRunReport_Finalize_NilErrorsBecomesEmptyList(t *testing.T) {
	r := RunReport{Summary: ReportSummary{Total: 1}}
	r.Finalize()

	b, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("json.Marshal 失败：%v", err)
	}
	if !bytes.Contains(b, []byte(`"errors":[]`)) {
		t.Fatalf("errors 应输出为 []，实际：%s", string(b))
	}
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("MOVE")
	if err != nil || m != ModeMove {
		t.Fatalf("期望 move，实际 %v err=%v", m, err)
	}
	m, err = ParseMode("")
	if err != nil || m != ModeCopy {
		t.Fatalf("空串应为 copy，实际 %v err=%v", m, err)
	}
	if _, err := ParseMode("link"); err == nil {
		t.Fatalf("期望非法 mode 报错")
	}
}
