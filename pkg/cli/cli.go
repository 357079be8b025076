// Package cli はコマンドライン引数の解析を担当する。
package cli

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/zurustar/sts-et/pkg/sheet"
)

// エクスポート形式
const (
	ExportNone   = ""
	ExportCSV    = "csv"
	ExportXLSX   = "xlsx"
	ExportAEKeys = "aekeys"
)

// Config はコマンドライン引数から解析された設定を保持する
type Config struct {
	Path     string // 開くシートファイル（.sts / .csv / .xdts / .tdts）
	LogLevel string // ログレベル（debug, info, warn, error）
	Headless bool   // ヘッドレスモード（UIを起動しない）
	ShowHelp bool   // ヘルプ表示フラグ

	// 新規シート作成用（Pathが空のとき）
	NewSheet sheet.Params

	// 編集履歴の最大段数（0で既定値）
	HistoryLimit int

	// エクスポート（指定するとヘッドレスで変換して終了する）
	ExportFormat string // csv, xlsx, aekeys
	ExportOutput string // 出力先パス（空ならstdout、xlsxでは必須）
	ExportLayer  int    // aekeysの対象レイヤー
}

// ParseArgs コマンドライン引数を解析してConfigを返す
func ParseArgs(args []string) (*Config, error) {
	// 引数を並べ替え：フラグを前に、位置引数を後ろに
	reorderedArgs := reorderArgs(args)

	fs := flag.NewFlagSet("sts-et", flag.ContinueOnError)

	config := &Config{}

	fs.StringVar(&config.LogLevel, "log-level", "info", "ログレベル（debug, info, warn, error）")
	fs.StringVar(&config.LogLevel, "l", "info", "ログレベル（短縮形）")
	fs.BoolVar(&config.Headless, "headless", false, "ヘッドレスモード")
	fs.BoolVar(&config.ShowHelp, "help", false, "ヘルプを表示")
	fs.BoolVar(&config.ShowHelp, "h", false, "ヘルプを表示（短縮形）")

	fs.StringVar(&config.NewSheet.Name, "name", "", "新規シートの名前")
	fs.IntVar(&config.NewSheet.LayerCount, "layers", 5, "新規シートのレイヤー数")
	fs.IntVar(&config.NewSheet.FrameRate, "rate", 24, "フレームレート（24または30）")
	fs.IntVar(&config.NewSheet.FramesPerPage, "fpp", sheet.DefaultFramesPerPage, "1ページあたりのフレーム数")
	fs.IntVar(&config.NewSheet.Seconds, "seconds", 6, "新規シートの尺（秒）")
	fs.IntVar(&config.NewSheet.ExtraFrames, "extra", 0, "新規シートの端数コマ")

	fs.IntVar(&config.HistoryLimit, "history", 0, "編集履歴の最大段数（0で既定値）")

	fs.StringVar(&config.ExportFormat, "export", "", "エクスポート形式（csv, xlsx, aekeys）")
	fs.StringVar(&config.ExportOutput, "o", "", "エクスポートの出力先")
	fs.IntVar(&config.ExportLayer, "layer", 0, "aekeysエクスポートの対象レイヤー")

	if err := fs.Parse(reorderedArgs); err != nil {
		return nil, err
	}

	// 環境変数からの設定（コマンドラインフラグが優先）
	if !config.Headless {
		if headlessEnv := os.Getenv("HEADLESS"); headlessEnv != "" {
			config.Headless = headlessEnv == "1" || strings.ToLower(headlessEnv) == "true"
		}
	}
	if config.LogLevel == "info" {
		if logLevelEnv := os.Getenv("LOG_LEVEL"); logLevelEnv != "" {
			config.LogLevel = strings.ToLower(logLevelEnv)
		}
	}

	// ログレベルの検証
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[config.LogLevel] {
		return nil, fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", config.LogLevel)
	}

	// エクスポート形式の検証。エクスポートはヘッドレスで動く。
	switch config.ExportFormat {
	case ExportNone:
	case ExportCSV, ExportAEKeys:
		config.Headless = true
	case ExportXLSX:
		if config.ExportOutput == "" {
			return nil, fmt.Errorf("xlsx export requires an output path (-o)")
		}
		config.Headless = true
	default:
		return nil, fmt.Errorf("invalid export format: %s (must be csv, xlsx, or aekeys)", config.ExportFormat)
	}

	// 位置引数（シートファイルのパス）
	if fs.NArg() > 0 {
		config.Path = fs.Arg(0)
	}
	if config.Path == "" && config.ExportFormat != ExportNone {
		return nil, fmt.Errorf("export requires an input file")
	}

	return config, nil
}

// reorderArgs 引数を並べ替えて、フラグを前に、位置引数を後ろに配置する
func reorderArgs(args []string) []string {
	var flags []string
	var positional []string

	for i := 0; i < len(args); i++ {
		arg := args[i]

		// フラグかどうかを判定（-または--で始まる）
		if len(arg) > 0 && arg[0] == '-' {
			flags = append(flags, arg)

			// 次の引数が値である可能性をチェック
			// （-l debug のような場合）
			if i+1 < len(args) && len(args[i+1]) > 0 && args[i+1][0] != '-' {
				// ブール型フラグでない場合は次の引数も追加
				if !isBoolFlag(arg) {
					i++
					flags = append(flags, args[i])
				}
			}
		} else {
			// 位置引数
			positional = append(positional, arg)
		}
	}

	// フラグを前に、位置引数を後ろに配置
	return append(flags, positional...)
}

func isBoolFlag(arg string) bool {
	switch strings.TrimLeft(arg, "-") {
	case "h", "help", "headless":
		return true
	}
	return false
}

// PrintHelp ヘルプメッセージを表示
func PrintHelp() {
	fmt.Fprintf(os.Stdout, `sts-et - タイムシートエディタ

Usage:
  sts-et [options] [sheet-path]

Arguments:
  sheet-path    開くシートファイル（.sts / .csv / .xdts / .tdts、省略可）
                省略した場合は新規シートを作成して起動

Options:
  -name <name>            新規シートの名前
  -layers <n>             新規シートのレイヤー数（デフォルト: 5）
  -rate <24|30>           フレームレート（デフォルト: 24）
  -fpp <n>                1ページあたりのフレーム数（デフォルト: 144）
  -seconds <n>            新規シートの尺（秒）（デフォルト: 6）
  -extra <n>              新規シートの端数コマ（デフォルト: 0）
  -history <n>            編集履歴の最大段数（デフォルト: 100）
  -export <format>        csv / xlsx / aekeys に変換して終了
  -o <path>               エクスポートの出力先（省略時はstdout、xlsxは必須）
  -layer <n>              aekeysエクスポートの対象レイヤー（デフォルト: 0）
  -l, --log-level <level> ログレベル: debug, info, warn, error（デフォルト: info）
  --headless              ヘッドレスモード（UIなし）
  -h, --help              このヘルプを表示

Environment Variables:
  HEADLESS=1              ヘッドレスモードを有効化
  LOG_LEVEL=<level>       ログレベル

Examples:
  sts-et cut01.sts                    STSファイルを開く
  sts-et -layers 8 -seconds 4         新規シートで起動
  sts-et -export csv cut01.sts        CSVをstdoutに出力
  sts-et -export xlsx -o out.xlsx cut01.sts
  sts-et -export aekeys -layer 2 cut01.sts
`)
}
