// Package app はアプリケーション全体の起動と制御を担当する。
package app

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/zurustar/sts-et/pkg/cli"
	"github.com/zurustar/sts-et/pkg/document"
	"github.com/zurustar/sts-et/pkg/editor"
	"github.com/zurustar/sts-et/pkg/export"
	"github.com/zurustar/sts-et/pkg/logger"
	"github.com/zurustar/sts-et/pkg/sheet"
	"github.com/zurustar/sts-et/pkg/tdts"
	"github.com/zurustar/sts-et/pkg/xdts"
)

// Application はアプリケーションのメインロジックを管理する
type Application struct {
	config *cli.Config
	log    *slog.Logger
	doc    *document.Document
}

// New Applicationを作成
func New() *Application {
	return &Application{}
}

// Run アプリケーションを実行
func (app *Application) Run(args []string) error {
	// 1. コマンドライン引数の解析
	if err := app.parseArgs(args); err != nil {
		return fmt.Errorf("failed to parse args: %w", err)
	}

	if app.config.ShowHelp {
		cli.PrintHelp()
		return nil
	}

	// 2. ロガーの初期化
	if err := app.initLogger(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	app.log.Info("Application started")

	// 3. シートの読み込み（または新規作成）
	if err := app.loadDocument(); err != nil {
		return fmt.Errorf("failed to load sheet: %w", err)
	}

	s := app.doc.Sheet()
	app.log.Info("Sheet ready",
		"name", s.Name, "layers", s.LayerCount, "frames", s.FrameCount,
		"rate", s.FrameRate)

	// 4. エクスポート指定があれば変換して終了
	if app.config.ExportFormat != cli.ExportNone {
		if err := app.runExport(); err != nil {
			return fmt.Errorf("failed to export: %w", err)
		}
		app.log.Info("Export finished", "format", app.config.ExportFormat)
		return nil
	}

	// 5. エディタの起動
	if app.config.Headless {
		app.log.Info("Headless mode, nothing to do")
		return nil
	}
	if err := editor.Run(app.doc); err != nil {
		return fmt.Errorf("editor terminated abnormally: %w", err)
	}

	app.log.Info("Application terminated normally")
	return nil
}

// parseArgs コマンドライン引数を解析
func (app *Application) parseArgs(args []string) error {
	config, err := cli.ParseArgs(args)
	if err != nil {
		return err
	}
	app.config = config
	return nil
}

// initLogger ロガーを初期化
func (app *Application) initLogger() error {
	if err := logger.InitLogger(app.config.LogLevel); err != nil {
		return err
	}
	app.log = logger.GetLogger()
	return nil
}

// loadDocument はパスの拡張子に応じてシートを読み込む。
// パスが空なら新規シートを作成する。
func (app *Application) loadDocument() error {
	c := app.config
	if c.Path == "" {
		doc, err := document.New(c.NewSheet, c.HistoryLimit)
		if err != nil {
			return err
		}
		app.doc = doc
		return nil
	}

	switch strings.ToLower(filepath.Ext(c.Path)) {
	case ".csv":
		s, err := export.ReadCSVFile(c.Path)
		if err != nil {
			return err
		}
		app.doc = document.FromSheet(s, c.HistoryLimit)
	case ".xdts":
		return app.loadTimeTables(xdts.ReadFile)
	case ".tdts":
		return app.loadTimeTables(tdts.ReadFile)
	default:
		doc, err := document.Open(c.Path, c.HistoryLimit)
		if err != nil {
			return err
		}
		app.doc = doc
	}
	return nil
}

// loadTimeTables はタイムテーブル形式（XDTS/TDTS）の読み込み結果から
// 先頭のシートを開く
func (app *Application) loadTimeTables(read func(string) ([]*sheet.Sheet, error)) error {
	sheets, err := read(app.config.Path)
	if err != nil {
		return err
	}
	if len(sheets) == 0 {
		return fmt.Errorf("no time tables in %s", app.config.Path)
	}
	if len(sheets) > 1 {
		app.log.Warn("複数のタイムテーブルのうち先頭だけを開く", "count", len(sheets))
	}
	app.doc = document.FromSheet(sheets[0], app.config.HistoryLimit)
	return nil
}

// runExport は読み込んだシートを指定形式で書き出す
func (app *Application) runExport() error {
	c := app.config
	s := app.doc.Sheet()

	switch c.ExportFormat {
	case cli.ExportCSV:
		if c.ExportOutput == "" {
			return export.ExportCSV(s, os.Stdout)
		}
		return export.WriteCSVFile(c.ExportOutput, s)
	case cli.ExportXLSX:
		return export.WriteXLSXFile(c.ExportOutput, s)
	case cli.ExportAEKeys:
		text, err := export.AEKeyframes(s, c.ExportLayer, export.DefaultAEVersion)
		if err != nil {
			return err
		}
		if c.ExportOutput == "" {
			_, err = os.Stdout.WriteString(text)
			return err
		}
		return os.WriteFile(c.ExportOutput, []byte(text), 0o644)
	}
	return fmt.Errorf("unknown export format: %s", c.ExportFormat)
}
