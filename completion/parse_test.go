package completion

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestStripFences(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{\"a\":1}\n```", `{"a":1}`},
		{"  {\"a\":1}  ", `{"a":1}`},
		{"Here:\n```json\n{}\n```\nDone", "Here:\n\n{}\n\nDone"},
	}
	for _, tt := range tests {
		if got := StripFences(tt.in); got != tt.want {
			t.Errorf("StripFences(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
		status  Status
		want    map[string]string
	}{
		{
			name:    "strict json",
			content: `{"{1}": "张三", "2": 28, "3": true, "4": null, "5": ["Go", "Rust"], "6": {"b": 1, "a": "<x>"}}`,
			status:  Parsed,
			want: map[string]string{
				"{1}": "张三", "2": "28", "3": "true", "4": "", "5": "Go, Rust", "6": `{"a":"<x>","b":1}`,
			},
		},
		{
			name:    "number keeps its text",
			content: `{"1": 1.50, "2": 12345678901234567890}`,
			status:  Parsed,
			want:    map[string]string{"1": "1.50", "2": "12345678901234567890"},
		},
		{
			name:    "python literal",
			content: "```json\n{'{1}': '北京', '{2}': True,}\n```",
			status:  Parsed,
			want:    map[string]string{"{1}": "北京", "{2}": "true"},
		},
		{
			name:    "empty object",
			content: `{}`,
			status:  Parsed,
			want:    map[string]string{},
		},
		{name: "list", content: `["a"]`, status: Unparseable},
		{name: "string", content: `"a"`, status: Unparseable},
		{name: "prose", content: `I cannot help with that.`, status: Unparseable},
		{name: "trailing data", content: `{"1": "a"} and more`, status: Unparseable},
		{name: "empty", content: "", status: Unparseable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ParseContent(tt.content)
			if res.Status != tt.status {
				t.Fatalf("Status = %v, want %v (err %v)", res.Status, tt.status, res.Err)
			}
			if tt.status != Parsed {
				if !errors.Is(res.Err, ErrUnparseable) {
					t.Errorf("Err = %v, want ErrUnparseable", res.Err)
				}
				if len(res.Values) != 0 {
					t.Errorf("Values = %v, want empty", res.Values)
				}
				return
			}
			if diff := cmp.Diff(tt.want, res.Values); diff != "" {
				t.Errorf("Values mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestResult_Keys(t *testing.T) {
	res := Result{Values: map[string]string{"{2}": "b", "{1}": "a", "3": "c"}}
	if diff := cmp.Diff([]string{"3", "{1}", "{2}"}, res.Keys()); diff != "" {
		t.Errorf("Keys() mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt("姓名：张三", "姓名 | {1}\n电话 | {2}")

	for _, want := range []string{
		"你是一个智能填表助手。",
		"{1}, {2}...",
		"【个人资料】\n姓名：张三\n",
		"【表格上下文】\n姓名 | {1}\n电话 | {2}\n",
		`{"{1}": "内容"}`,
		`找不到信息填 "无"`,
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestBuildPrompt_DoesNotExpandPlaceholdersInInput(t *testing.T) {
	prompt := BuildPrompt("{{FORM_CONTEXT}}", "ctx")
	if !strings.Contains(prompt, "【个人资料】\n{{FORM_CONTEXT}}\n") {
		t.Errorf("profile text was rewritten:\n%s", prompt)
	}
}

func TestExcerpt(t *testing.T) {
	if got := excerpt("张三李四", 2); got != "张三..." {
		t.Errorf("excerpt() = %q", got)
	}
	if got := excerpt("ab", 5); got != "ab" {
		t.Errorf("excerpt() = %q", got)
	}
}
