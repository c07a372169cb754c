package completion

import "strings"

// None is the answer the model is told to give for a field the profile
// says nothing about.
const None = "无"

const promptTemplate = `你是一个智能填表助手。
【任务】
表格中的空缺项已标记为 {1}, {2}...
请根据【个人资料】推断内容。
【个人资料】
{{PROFILE}}
【表格上下文】
{{FORM_CONTEXT}}
【要求】
1. 返回纯 JSON，格式 {"{1}": "内容"}。
2. 找不到信息填 "` + None + `"。
`

// BuildPrompt returns the single user message sent to the model.
func BuildPrompt(profile, formContext string) string {
	return strings.NewReplacer(
		"{{PROFILE}}", profile,
		"{{FORM_CONTEXT}}", formContext,
	).Replace(promptTemplate)
}
