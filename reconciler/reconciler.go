// Package reconciler 清除沒有被任何個人檔案或拍賣商品參照的圖片檔案
package reconciler

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"commerce/adapters/media"
	"commerce/models"
)

// ReferenceSource 提供資料庫中仍被使用的圖片參照
type ReferenceSource interface {
	ProfileAvatars(ctx context.Context) ([]string, error)
	AuctionPictures(ctx context.Context) ([]string, error)
}

// Storage 是圖片檔案所在的儲存後端
type Storage interface {
	Path(ref string) string
	List(ctx context.Context, dir string) ([]string, error)
	Remove(ctx context.Context, path string) error
}

// Report 是一次清理的結果
type Report struct {
	// Orphans 是沒有被參照的檔案，已排序
	Orphans []string
	Removed int
	Errors  int
	// Aborted 代表使用者沒有確認刪除
	Aborted bool
}

type Reconciler struct {
	refs             ReferenceSource
	storage          Storage
	in               io.Reader
	out              io.Writer
	logger           *slog.Logger
	skipConfirmation bool
	removed          metric.Int64Counter
}

type Option func(*Reconciler)

// WithSkipConfirmation 不詢問使用者直接刪除
func WithSkipConfirmation(skip bool) Option {
	return func(r *Reconciler) {
		r.skipConfirmation = skip
	}
}

// WithIO 設定讀取確認與輸出訊息的位置，預設為 stdin 與 stdout
func WithIO(in io.Reader, out io.Writer) Option {
	return func(r *Reconciler) {
		r.in = in
		r.out = out
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *Reconciler) {
		r.logger = logger
	}
}

func New(refs ReferenceSource, storage Storage, opts ...Option) (*Reconciler, error) {
	const op = "reconciler.New"
	removed, err := otel.Meter("commerce/reconciler").Int64Counter("commerce.media.removed", metric.WithDescription("Number of removed orphaned image files"))
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to create counter, err=%w", op, err)
	}
	r := &Reconciler{
		refs:    refs,
		storage: storage,
		in:      os.Stdin,
		out:     os.Stdout,
		logger:  slog.Default(),
		removed: removed,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Run 找出沒有被參照的圖片，經過使用者確認後刪除
//
// 流程:
//   - 1. 收集個人檔案頭像與商品圖片的實際位置，預設圖片不列入
//   - 2. 列出 profile_images 與 auction_images 下所有檔案，目錄不存在時略過
//   - 3. 沒有被參照的檔案就是要刪除的檔案
//   - 4. 詢問使用者是否繼續，除非設定了 WithSkipConfirmation
//   - 5. 逐一刪除，單一檔案失敗不會中斷，只會記錄錯誤
func (r *Reconciler) Run(ctx context.Context) (Report, error) {
	const op = "reconciler.Run"
	report := Report{}

	referenced, err := r.referencedPaths(ctx)
	if err != nil {
		return report, fmt.Errorf("[%s] Fail to collect references, err=%w", op, err)
	}
	files, err := r.storedFiles(ctx)
	if err != nil {
		return report, fmt.Errorf("[%s] Fail to list image files, err=%w", op, err)
	}
	report.Orphans = lo.Filter(files, func(file string, _ int) bool {
		return !referenced[file] && !isPlaceholder(file)
	})
	sort.Strings(report.Orphans)

	if len(report.Orphans) == 0 {
		r.println("Already cleanedUp nothing todo!")
		return report, nil
	}

	if !r.skipConfirmation {
		r.println("Following image files are going to get removed!")
		for _, orphan := range report.Orphans {
			r.println(" - " + baseName(orphan))
		}
		confirmed, err := r.confirm(ctx, "This action is irreversible input; y or yes to continue: ")
		if err != nil {
			r.logger.Warn("Process interrupted by user!")
			report.Aborted = true
			return report, nil
		}
		if !confirmed {
			r.logger.Info("Process aborted by user!")
			report.Aborted = true
			return report, nil
		}
	}

	for _, orphan := range report.Orphans {
		if err := r.storage.Remove(ctx, orphan); err != nil {
			report.Errors++
			name := baseName(orphan)
			switch {
			case errors.Is(err, fs.ErrNotExist):
				r.logger.Error("File not found: "+name, slog.Any("error", err))
			case errors.Is(err, fs.ErrPermission):
				r.logger.Error("Permission denied: "+name, slog.Any("error", err))
			default:
				r.logger.Error(fmt.Sprintf("OS Error: %v", err))
			}
			continue
		}
		report.Removed++
		r.removed.Add(ctx, 1)
		r.logger.Info("Removed file: " + baseName(orphan))
	}

	if report.Removed > 0 {
		r.println(fmt.Sprintf("Cleaned Up %d abundant images", report.Removed))
	}
	if report.Errors > 0 {
		r.println(fmt.Sprintf("%d errors occurred!", report.Errors))
	}
	return report, nil
}

func (r *Reconciler) referencedPaths(ctx context.Context) (map[string]bool, error) {
	avatars, err := r.refs.ProfileAvatars(ctx)
	if err != nil {
		return nil, err
	}
	pictures, err := r.refs.AuctionPictures(ctx)
	if err != nil {
		return nil, err
	}
	referenced := make(map[string]bool, len(avatars)+len(pictures))
	for _, ref := range append(avatars, pictures...) {
		if ref == "" || isPlaceholder(ref) {
			continue
		}
		referenced[r.storage.Path(ref)] = true
	}
	return referenced, nil
}

func (r *Reconciler) storedFiles(ctx context.Context) ([]string, error) {
	var files []string
	for _, dir := range []string{models.AuctionImagesDir, models.ProfileImagesDir} {
		paths, err := r.storage.List(ctx, dir)
		if errors.Is(err, media.ErrDirectoryNotFound) {
			r.logger.Warn("Directory not found: " + r.storage.Path(dir))
			continue
		}
		if err != nil {
			return nil, err
		}
		files = append(files, paths...)
	}
	return lo.Uniq(files), nil
}

// confirm 讀取一行使用者輸入，只有 y 或 yes 代表同意
// context 被取消時返回錯誤，讀到 EOF 視為不同意
func (r *Reconciler) confirm(ctx context.Context, prompt string) (bool, error) {
	fmt.Fprint(r.out, prompt)
	answers := make(chan string, 1)
	go func() {
		line, _ := bufio.NewReader(r.in).ReadString('\n')
		answers <- line
	}()
	select {
	case <-ctx.Done():
		fmt.Fprintln(r.out)
		return false, ctx.Err()
	case answer := <-answers:
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "y", "yes":
			return true, nil
		}
		return false, nil
	}
}

func (r *Reconciler) println(message string) {
	fmt.Fprintln(r.out, message)
}

func isPlaceholder(p string) bool {
	name := baseName(p)
	return name == models.DefaultAvatar || name == models.DefaultPicture
}

// baseName 同時處理本機路徑與物件 key
func baseName(p string) string {
	return path.Base(filepath.ToSlash(p))
}
