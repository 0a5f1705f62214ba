package payload

import (
	"testing"

	"github.com/tidwall/gjson"
)

const capsuleDoc = `{
  "summary": {"coverage": 0.91},
  "meta": {"coverage": 0.2},
  "data": {"capsules": [{"id": "c1"}]},
  "coverage": null,
  "count": 0,
  "capsule_json": {
    "@id": "urn:capsule:1",
    "agentnet:content": {"agentnet:name": "Acme", "agentnet:description": ""}
  }
}`

func TestPresentSkipsMissingAndNull(t *testing.T) {
	doc := gjson.Parse(capsuleDoc)
	v, ok := Float(doc, "coverage", "summary.coverage", "meta.coverage")
	if !ok || v != 0.91 {
		t.Fatalf("coverage=%v ok=%v", v, ok)
	}
	if got := Present(doc, "count", "data.count"); got.Int() != 0 || !got.Exists() {
		t.Fatalf("zero must count as present, got %v", got)
	}
}

func TestNonEmptySkipsFalsy(t *testing.T) {
	doc := gjson.Parse(`{"a":"","b":0,"c":"x"}`)
	if got := NonEmpty(doc, "a", "b", "c"); got.String() != "x" {
		t.Fatalf("got=%q", got.String())
	}
	if got := NonEmpty(doc, "a", "b"); got.Exists() {
		t.Fatalf("expected no value, got %v", got)
	}
}

func TestPathEscapesNamespacedKeys(t *testing.T) {
	doc := gjson.Parse(capsuleDoc)
	if got := String(doc, Path("capsule_json", "@id")); got != "urn:capsule:1" {
		t.Fatalf("@id=%q", got)
	}
	name := Path("capsule_json", "agentnet:content", "agentnet:name")
	desc := Path("capsule_json", "agentnet:content", "agentnet:description")
	if got := String(doc, desc, name); got != "Acme" {
		t.Fatalf("text=%q", got)
	}
}

func TestArray(t *testing.T) {
	doc := gjson.Parse(capsuleDoc)
	items := Array(doc, "capsules", "summary.capsules", "data.capsules")
	if len(items) != 1 || items[0].Get("id").String() != "c1" {
		t.Fatalf("items=%v", items)
	}
	if Array(doc, "summary") != nil {
		t.Fatalf("object must not be read as array")
	}
}
