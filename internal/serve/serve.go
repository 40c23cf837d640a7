// Package serve 通过 HTTP 暴露输出目录：/ 实时渲染索引页，其余路径作为静态文件。
package serve

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/John-Robertt/parmove/internal/index"
	"github.com/John-Robertt/parmove/internal/logging"
)

const shutdownTimeout = 5 * time.Second

// NewHandler 返回服务 dir 的 handler。以 . 开头的路径段（锁文件等）一律 404。
func NewHandler(dir string, log logging.Logger) http.Handler {
	log = logging.OrDiscard(log)

	files := http.FileServer(http.Dir(dir))
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		l, err := index.Build(dir)
		if err != nil {
			log.Error("读取输出目录失败", "dir", dir, "err", err)
			http.Error(w, "output directory unavailable", http.StatusInternalServerError)
			return
		}
		var buf bytes.Buffer
		if err := index.Render(&buf, l); err != nil {
			log.Error("渲染索引失败", "err", err)
			http.Error(w, "render failed", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(buf.Bytes())
	})
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		if hasHiddenSegment(r.URL.Path) {
			http.NotFound(w, r)
			return
		}
		files.ServeHTTP(w, r)
	})
	return mux
}

func hasHiddenSegment(p string) bool {
	for _, seg := range strings.Split(p, "/") {
		if strings.HasPrefix(seg, ".") {
			return true
		}
	}
	return false
}

// ListenAndServe 在 addr 上服务 dir，直到 ctx 结束；随后优雅关闭。
// ready 非 nil 时在监听成功后以实际地址回调一次。
func ListenAndServe(ctx context.Context, addr, dir string, log logging.Logger, ready func(net.Addr)) error {
	log = logging.OrDiscard(log)

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("监听 %s 失败：%w", addr, err)
	}

	srv := &http.Server{
		Handler:           NewHandler(dir, log),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()

	log.Info("开始服务输出目录", "addr", ln.Addr().String(), "dir", dir)
	if ready != nil {
		ready(ln.Addr())
	}

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info("HTTP 服务已停止")
	return nil
}
