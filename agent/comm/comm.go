package comm

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/HildaM/logs/slog"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
)

// ModifyInputFunc 输入消息修改函数，maxLimit 为 0 时不做截断
func ModifyInputFunc(ctx context.Context, inputList []*schema.Message, maxLimit int) []*schema.Message {
	if maxLimit <= 0 {
		return inputList
	}

	sum := 0
	for _, input := range inputList {
		if input == nil {
			slog.Debug("ModifyInputFunc debug, input is nil")
			continue
		}

		length := utf8.RuneCountInString(input.Content)
		if length >= maxLimit {
			slog.Debug("ModifyInputFunc debug, input content length is %d, max limit token is %d", length, maxLimit)
			// 截断, 取后半段部分的最新信息
			runes := []rune(input.Content)
			input.Content = string(runes[length-maxLimit:])
		}

		sum += utf8.RuneCountInString(input.Content)
	}

	slog.Debug("ModifyInputFunc debug, input content sum length is %d", sum)
	return inputList
}

// Generate 使用系统提示词和用户上下文调用一次模型
func Generate(ctx context.Context, llm model.BaseChatModel, sysPrompt, userInput string, maxLimit int) (*schema.Message, error) {
	promptTemp := prompt.FromMessages(schema.FString,
		schema.SystemMessage(sysPrompt),
		schema.UserMessage("{user_input}"),
	)
	input, err := promptTemp.Format(ctx, map[string]any{
		"user_input": userInput,
	})
	if err != nil {
		slog.Error("Generate failed, format prompt template fail, err = %v", err)
		return nil, err
	}

	output, err := llm.Generate(ctx, ModifyInputFunc(ctx, input, maxLimit))
	if err != nil {
		slog.Error("Generate failed, chat model generate fail, err = %v", err)
		return nil, err
	}
	return output, nil
}

// ContainsAny 忽略大小写判断文本是否包含任一关键词
func ContainsAny(text string, words []string) bool {
	lower := strings.ToLower(text)
	for _, word := range words {
		if strings.Contains(lower, word) {
			return true
		}
	}
	return false
}

// Truncate 按字符截取前 n 个字符
func Truncate(s string, n int) string {
	if n < 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
