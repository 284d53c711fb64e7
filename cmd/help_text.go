package cmd

import "strings"

func rootLongHelp() string {
	return strings.TrimSpace(`
文本字数统计 CLI，计数规则与浏览器一致（按 UTF-16 码元计数）。

三种使用方式：
1. 批量统计（默认模式）
   - 命令：char-count <path...>
   - 或：cat a.txt | char-count
   - 输出：file_stats 事件（total / no_space / no_newline / lines / main / hash）
2. 交互会话
   - 命令：char-count tui
   - 输入即统计；ctrl+s/ctrl+n/ctrl+t 切换排除空格/换行/制表符
   - ctrl+y 复制文本，ctrl+r 复制统计结果，ctrl+l 清空（需确认）
3. 会话子命令（脚本/AI 友好）
   - show / input / toggle / summary / copy / clear
   - 与 tui 共用同一份保存的文本和开关

计数口径：
- total：全部字符
- no_space：去掉半角空格、全角空格（U+3000）和制表符
- no_newline：去掉 \r 和 \n
- lines：按 CRLF/CR/LF 切分后的段数，空文本为 0
- main：按当前开关排除后的字符数（默认排除制表符）

配置（优先级从低到高）：
- 内置默认值
- --config 指定的 YAML 文件（支持 ${VAR:-默认值}）
- CHARCOUNT_* 环境变量（如 CHARCOUNT_STATE_DIR）
- 命令行参数

输入与扫描：
- 支持多个文件、多个目录、文件+目录混合，目录默认递归
- 固定不跟随软链接
- 默认忽略目录：.git/.svn/.hg/node_modules/vendor
- 默认忽略文件：.DS_Store/Thumbs.db
- 遵循 .gitignore 常见子集

error 事件（给 AI 直接执行）：
- code/category/path/detail
- next_action / fix_example / doc_key / recoverable

退出码：
- 0 成功
- 2 参数错误
- 3 输入错误
- 4 配置错误
- 5 内部错误
`)
}

func rootExampleHelp() string {
	return strings.TrimSpace(`
  # 统计单个文件
  char-count /path/to/a.md

  # 统计目录，输出 JSON
  char-count /path/to/docs --format json

  # 统计管道输入，同时排除空格
  pbpaste | char-count --exclude-spaces

  # 打开交互会话
  char-count tui

  # 脚本方式操作会话
  char-count input /path/to/draft.txt
  char-count toggle newlines on
  char-count summary
  char-count copy --result
  char-count clear --yes
`)
}
