package template

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/HildaM/logs/slog"
)

//go:embed prompts/*.md
var builtin embed.FS

// OverrideDir 工作目录下的提示词覆盖目录，存在同名文件时优先使用
var OverrideDir = "prompts"

// GetPromptTemplate 加载并返回一个提示模板
func GetPromptTemplate(ctx context.Context, promptName string) (string, error) {
	name := fmt.Sprintf("%s.md", promptName)

	// 优先读取工作目录下的覆盖文件
	if OverrideDir != "" {
		content, err := os.ReadFile(filepath.Join(OverrideDir, name))
		if err == nil {
			return strings.TrimSpace(string(content)), nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			msg := fmt.Errorf("GetPromptTemplate failed, read override file, err: %w", err)
			slog.Error(msg.Error())
			return "", msg
		}
	}

	// 读取内置模板
	content, err := builtin.ReadFile("prompts/" + name)
	if err != nil {
		msg := fmt.Errorf("GetPromptTemplate failed, read template file, err: %w", err)
		slog.Error(msg.Error())
		return "", msg
	}
	return strings.TrimSpace(string(content)), nil
}
