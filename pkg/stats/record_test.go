package stats

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestRecordOrder(t *testing.T) {
	var r Record
	r.Set("work", 60)
	r.Set("rest", 10)
	r.Add("work", 30)
	r.Add("study", 5)

	want := []string{"work", "rest", "study"}
	if got := r.Categories(); !reflect.DeepEqual(got, want) {
		t.Errorf("Categories() = %v, want %v", got, want)
	}
	if r.Get("work") != 90 {
		t.Errorf("Get(work) = %d, want 90", r.Get("work"))
	}
	if r.Total() != 105 {
		t.Errorf("Total() = %d, want 105", r.Total())
	}
	if r.String() != "{work: 90, rest: 10, study: 5}" {
		t.Errorf("String() = %s", r.String())
	}
}

func TestRecordDelete(t *testing.T) {
	r := NewRecord()
	r.Set("a", 1)
	r.Set("b", 2)
	r.Set("c", 3)
	r.Delete("b")
	r.Delete("missing")

	if got := r.Categories(); !reflect.DeepEqual(got, []string{"a", "c"}) {
		t.Errorf("Categories() = %v", got)
	}
	if r.Has("b") {
		t.Error("b should be gone")
	}
	r.Set("b", 4)
	if got := r.Categories(); !reflect.DeepEqual(got, []string{"a", "c", "b"}) {
		t.Errorf("re-added category should move to the end, got %v", got)
	}
}

func TestRecordZeroValue(t *testing.T) {
	var r Record
	if r.Len() != 0 || r.Total() != 0 || r.Get("x") != 0 || r.Has("x") {
		t.Error("zero Record should be empty")
	}
	if r.String() != "{}" {
		t.Errorf("String() = %q", r.String())
	}
	data, err := json.Marshal(r)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "{}" {
		t.Errorf("Marshal = %s, want {}", data)
	}
}

func TestRecordJSONKeepsOrder(t *testing.T) {
	in := `{"sleep": 420, "work": 480, "exercise": 30.9, "读书": 15}`

	var r Record
	if err := json.Unmarshal([]byte(in), &r); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	want := []string{"sleep", "work", "exercise", "读书"}
	if got := r.Categories(); !reflect.DeepEqual(got, want) {
		t.Errorf("Categories() = %v, want %v", got, want)
	}
	if r.Get("exercise") != 30 {
		t.Errorf("fractional minutes should truncate, got %d", r.Get("exercise"))
	}

	out, err := json.Marshal(r)
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != `{"sleep":420,"work":480,"exercise":30,"读书":15}` {
		t.Errorf("Marshal = %s", out)
	}
}

func TestRecordJSONInsideMap(t *testing.T) {
	in := `{"2024.01.01": {"b": 1, "a": 2}}`
	var days map[string]Record
	if err := json.Unmarshal([]byte(in), &days); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got := days["2024.01.01"].Categories(); !reflect.DeepEqual(got, []string{"b", "a"}) {
		t.Errorf("Categories() = %v", got)
	}
}

func TestRecordJSONErrors(t *testing.T) {
	for _, in := range []string{`[]`, `{"a": "x"}`, `{"a": 1`, `"str"`} {
		var r Record
		if err := json.Unmarshal([]byte(in), &r); err == nil {
			t.Errorf("Unmarshal(%s) should fail", in)
		}
	}
}

func TestRecordEqual(t *testing.T) {
	a, b := NewRecord(), NewRecord()
	a.Set("x", 1)
	a.Set("y", 2)
	b.Set("y", 2)
	b.Set("x", 1)
	if a.Equal(b) {
		t.Error("records with different order should not be equal")
	}
	if !a.Equal(a) {
		t.Error("record should equal itself")
	}
	if !reflect.DeepEqual(a.Map(), b.Map()) {
		t.Error("Map() should ignore order")
	}
}

func TestRecordJSONSpecialCharacters(t *testing.T) {
	r := NewRecord()
	r.Set("Meals & rest", 45)
	r.Set(`say "hi"`, 5)
	data, err := json.Marshal(r)
	if err != nil {
		t.Fatal(err)
	}
	var back Record
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal(%s): %v", data, err)
	}
	if !back.Equal(r) {
		t.Errorf("round trip = %v, want %v", back, r)
	}
}

func TestRecordCopiesShareEntries(t *testing.T) {
	a := NewRecord()
	a.Set("work", 60)
	b := a
	b.Add("work", 30)
	if a.Get("work") != 90 {
		t.Errorf("copy should share entries, got %v", a)
	}
}
