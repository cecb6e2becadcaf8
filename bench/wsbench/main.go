package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/schollz/progressbar/v3"
)

// Config 压测配置
type Config struct {
	Target       string        // WebSocket URL
	LoginURL     string        // 登录接口，非空时先登录换 AccessToken
	Username     string        // 登录用户名
	Password     string        // 登录密码
	Token        string        // 直接提供 AccessToken，跳过登录
	Conns        int           // 总连接数
	Duration     time.Duration // 压测持续时间
	Ramp         time.Duration // 爬坡时间
	Output       string        // 输出格式：text, json
	Verbose      bool          // 详细输出
}

// Stats 统计数据
type Stats struct {
	mu sync.Mutex

	TotalAttempts int64
	SuccessConns  int64
	FailedConns   int64
	CurrentConns  int64
	Disconnects   int64
	Evicted       int64 // 服务端主动关闭（会话上限 / 强制下线）

	ConnLatencies []int64 // 纳秒
	PushReceived  int64   // 收到的推送条数

	Errors    map[string]int64
	StartTime time.Time
	EndTime   time.Time
}

// Result 压测结果
type Result struct {
	TotalAttempts int64        `json:"total_attempts"`
	SuccessConns  int64        `json:"success_conns"`
	FailedConns   int64        `json:"failed_conns"`
	SuccessRate   float64      `json:"success_rate_percent"`
	Disconnects   int64        `json:"disconnects"`
	Evicted       int64        `json:"evicted"`
	PushReceived  int64        `json:"push_received"`
	ConnLatency   LatencyStats `json:"conn_latency_ms"`
	Errors        map[string]int64 `json:"errors"`
	ActualTime    float64      `json:"actual_time_seconds"`
}

// LatencyStats 延迟统计
type LatencyStats struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Avg    float64 `json:"avg"`
	P50    float64 `json:"p50"`
	P90    float64 `json:"p90"`
	P95    float64 `json:"p95"`
	P99    float64 `json:"p99"`
	StdDev float64 `json:"std_dev"`
}

func main() {
	cfg := parseFlags()

	fmt.Println("=== wsbench - 会话接入压测工具 ===")
	fmt.Printf("目标: %s\n", cfg.Target)
	fmt.Printf("连接数: %d\n", cfg.Conns)
	fmt.Printf("持续时间: %s\n", cfg.Duration)
	fmt.Printf("爬坡时间: %s\n", cfg.Ramp)
	fmt.Println()

	token := cfg.Token
	if token == "" && cfg.LoginURL != "" {
		t, err := login(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "登录失败: %v\n", err)
			os.Exit(1)
		}
		token = t
	}
	if token == "" {
		fmt.Fprintln(os.Stderr, "需要 -token 或 -login-url")
		os.Exit(1)
	}

	stats := &Stats{
		Errors:    make(map[string]int64),
		StartTime: time.Now(),
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\n收到中断信号，正在关闭...")
		cancel()
	}()

	runBench(ctx, cfg, token, stats)
	stats.EndTime = time.Now()

	result := generateResult(stats)
	if cfg.Output == "json" {
		data, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(data))
	} else {
		outputText(result)
	}
}

func parseFlags() Config {
	cfg := Config{}

	flag.StringVar(&cfg.Target, "target", "ws://localhost:8080/ws", "WebSocket URL")
	flag.StringVar(&cfg.LoginURL, "login-url", "", "登录接口，如 http://localhost:8080/api/auth/login")
	flag.StringVar(&cfg.Username, "username", "", "登录用户名")
	flag.StringVar(&cfg.Password, "password", "", "登录密码")
	flag.StringVar(&cfg.Token, "token", "", "AccessToken，提供时跳过登录")
	flag.IntVar(&cfg.Conns, "conns", 1000, "总连接数")
	flag.DurationVar(&cfg.Duration, "duration", 5*time.Minute, "压测持续时间")
	flag.DurationVar(&cfg.Ramp, "ramp", 1*time.Minute, "爬坡时间")
	flag.StringVar(&cfg.Output, "output", "text", "输出格式: text, json")
	flag.BoolVar(&cfg.Verbose, "verbose", false, "详细输出")

	flag.Parse()
	return cfg
}

// login 调登录接口换一个 AccessToken，所有连接共用
func login(cfg Config) (string, error) {
	body, _ := json.Marshal(map[string]string{
		"username": cfg.Username,
		"password": cfg.Password,
	})
	resp, err := http.Post(cfg.LoginURL, "application/json", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("登录返回 %d", resp.StatusCode)
	}
	var out struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if out.AccessToken == "" {
		return "", fmt.Errorf("响应缺少 access_token")
	}
	return out.AccessToken, nil
}

func runBench(ctx context.Context, cfg Config, token string, stats *Stats) {
	var wg sync.WaitGroup
	connCh := make(chan *websocket.Conn, cfg.Conns)

	connsPerSecond := float64(cfg.Conns) / cfg.Ramp.Seconds()
	if connsPerSecond < 1 {
		connsPerSecond = 1
	}
	fmt.Printf("爬坡速率: %.1f 连接/秒\n\n", connsPerSecond)

	bar := progressbar.NewOptions(cfg.Conns,
		progressbar.OptionSetDescription("建立连接"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("conn"),
	)

	ticker := time.NewTicker(time.Duration(float64(time.Second) / connsPerSecond))
	defer ticker.Stop()

	connID := 0
	rampDone := false

	for !rampDone {
		select {
		case <-ctx.Done():
			rampDone = true
		case <-ticker.C:
			if connID >= cfg.Conns {
				rampDone = true
				continue
			}
			wg.Add(1)
			go func(id int) {
				defer wg.Done()
				ws := dial(ctx, id, cfg, token, stats)
				if ws != nil {
					select {
					case connCh <- ws:
					case <-ctx.Done():
						ws.Close()
					}
				}
				bar.Add(1)
			}(connID)
			connID++
		}
	}

	bar.Finish()
	fmt.Println()
	wg.Wait()

	close(connCh)
	var conns []*websocket.Conn
	for c := range connCh {
		conns = append(conns, c)
	}
	fmt.Printf("成功建立 %d 个连接\n", len(conns))
	if len(conns) == 0 {
		return
	}

	elapsed := time.Since(stats.StartTime)
	remaining := cfg.Duration - elapsed
	if remaining <= 0 {
		remaining = time.Minute
	}
	fmt.Printf("维持连接 %s...\n\n", remaining)

	var connWg sync.WaitGroup
	for _, c := range conns {
		connWg.Add(1)
		go func(ws *websocket.Conn) {
			defer connWg.Done()
			holdConnection(ctx, ws, stats, remaining)
		}(c)
	}

	reportTicker := time.NewTicker(10 * time.Second)
	defer reportTicker.Stop()

	done := make(chan struct{})
	go func() {
		connWg.Wait()
		close(done)
	}()

	timeout := time.After(remaining)
	for {
		select {
		case <-ctx.Done():
			fmt.Println("收到中断信号，等待连接关闭...")
			connWg.Wait()
			return
		case <-timeout:
			fmt.Println("压测时间到，关闭连接...")
			for _, c := range conns {
				c.Close()
			}
			connWg.Wait()
			return
		case <-done:
			return
		case <-reportTicker.C:
			printProgress(stats)
		}
	}
}

func dial(ctx context.Context, id int, cfg Config, token string, stats *Stats) *websocket.Conn {
	atomic.AddInt64(&stats.TotalAttempts, 1)
	start := time.Now()

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
		ReadBufferSize:   4096,
		WriteBufferSize:  4096,
	}
	url := fmt.Sprintf("%s?token=%s", cfg.Target, token)

	ws, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		atomic.AddInt64(&stats.FailedConns, 1)
		stats.mu.Lock()
		errStr := err.Error()
		if len(errStr) > 50 {
			errStr = errStr[:50]
		}
		stats.Errors[errStr]++
		stats.mu.Unlock()
		if cfg.Verbose {
			fmt.Printf("连接 %d 失败: %v\n", id, err)
		}
		return nil
	}

	latency := time.Since(start).Nanoseconds()
	stats.mu.Lock()
	stats.ConnLatencies = append(stats.ConnLatencies, latency)
	stats.mu.Unlock()

	atomic.AddInt64(&stats.SuccessConns, 1)
	atomic.AddInt64(&stats.CurrentConns, 1)
	return ws
}

// holdConnection 只读不写：回应服务端 Ping，统计收到的推送，直到被关或超时
func holdConnection(ctx context.Context, ws *websocket.Conn, stats *Stats, duration time.Duration) {
	defer func() {
		ws.Close()
		atomic.AddInt64(&stats.CurrentConns, -1)
	}()

	ws.SetPingHandler(func(appData string) error {
		ws.SetWriteDeadline(time.Now().Add(5 * time.Second))
		return ws.WriteMessage(websocket.PongMessage, []byte(appData))
	})

	deadline := time.Now().Add(duration)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		if time.Now().After(deadline) {
			return
		}

		ws.SetReadDeadline(time.Now().Add(90 * time.Second))
		if _, _, err := ws.ReadMessage(); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				// 服务端发了关闭帧：会话上限淘汰或强制下线
				atomic.AddInt64(&stats.Evicted, 1)
			} else if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway) {
				atomic.AddInt64(&stats.Disconnects, 1)
			}
			return
		}
		atomic.AddInt64(&stats.PushReceived, 1)
	}
}

func printProgress(stats *Stats) {
	current := atomic.LoadInt64(&stats.CurrentConns)
	success := atomic.LoadInt64(&stats.SuccessConns)
	failed := atomic.LoadInt64(&stats.FailedConns)
	evicted := atomic.LoadInt64(&stats.Evicted)
	pushed := atomic.LoadInt64(&stats.PushReceived)

	elapsed := time.Since(stats.StartTime)
	fmt.Printf("[%s] 当前连接: %d | 成功: %d | 失败: %d | 被踢: %d | 推送: %d\n",
		elapsed.Round(time.Second), current, success, failed, evicted, pushed)
}

func generateResult(stats *Stats) Result {
	result := Result{
		TotalAttempts: stats.TotalAttempts,
		SuccessConns:  stats.SuccessConns,
		FailedConns:   stats.FailedConns,
		Disconnects:   stats.Disconnects,
		Evicted:       stats.Evicted,
		PushReceived:  stats.PushReceived,
		Errors:        stats.Errors,
		ActualTime:    stats.EndTime.Sub(stats.StartTime).Seconds(),
	}
	if stats.TotalAttempts > 0 {
		result.SuccessRate = float64(stats.SuccessConns) / float64(stats.TotalAttempts) * 100
	}
	result.ConnLatency = calculateLatencyStats(stats.ConnLatencies)
	return result
}

func calculateLatencyStats(latencies []int64) LatencyStats {
	if len(latencies) == 0 {
		return LatencyStats{}
	}

	sorted := make([]int64, len(latencies))
	copy(sorted, latencies)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	toMs := func(ns int64) float64 { return float64(ns) / 1e6 }

	var sum int64
	for _, v := range sorted {
		sum += v
	}
	avg := float64(sum) / float64(len(sorted))

	var variance float64
	for _, v := range sorted {
		diff := float64(v) - avg
		variance += diff * diff
	}
	variance /= float64(len(sorted))
	stdDev := math.Sqrt(variance)

	return LatencyStats{
		Min:    toMs(sorted[0]),
		Max:    toMs(sorted[len(sorted)-1]),
		Avg:    toMs(int64(avg)),
		P50:    toMs(sorted[len(sorted)*50/100]),
		P90:    toMs(sorted[len(sorted)*90/100]),
		P95:    toMs(sorted[len(sorted)*95/100]),
		P99:    toMs(sorted[len(sorted)*99/100]),
		StdDev: toMs(int64(stdDev)),
	}
}

func outputText(result Result) {
	fmt.Println()
	fmt.Println("==================== 压测结果 ====================")
	fmt.Println()
	fmt.Println("--- 连接统计 ---")
	fmt.Printf("尝试连接数:     %d\n", result.TotalAttempts)
	fmt.Printf("成功连接数:     %d\n", result.SuccessConns)
	fmt.Printf("失败连接数:     %d\n", result.FailedConns)
	fmt.Printf("连接成功率:     %.2f%%\n", result.SuccessRate)
	fmt.Printf("异常断开数:     %d\n", result.Disconnects)
	fmt.Printf("被踢下线数:     %d\n", result.Evicted)
	fmt.Printf("收到推送数:     %d\n", result.PushReceived)
	fmt.Println()

	fmt.Println("--- 连接延迟 (ms) ---")
	fmt.Printf("Min:    %.2f\n", result.ConnLatency.Min)
	fmt.Printf("Max:    %.2f\n", result.ConnLatency.Max)
	fmt.Printf("Avg:    %.2f\n", result.ConnLatency.Avg)
	fmt.Printf("P50:    %.2f\n", result.ConnLatency.P50)
	fmt.Printf("P90:    %.2f\n", result.ConnLatency.P90)
	fmt.Printf("P95:    %.2f\n", result.ConnLatency.P95)
	fmt.Printf("P99:    %.2f\n", result.ConnLatency.P99)
	fmt.Printf("StdDev: %.2f\n", result.ConnLatency.StdDev)
	fmt.Println()

	if len(result.Errors) > 0 {
		fmt.Println("--- 错误统计 ---")
		for err, count := range result.Errors {
			fmt.Printf("%s: %d\n", err, count)
		}
		fmt.Println()
	}

	fmt.Printf("--- 运行时间: %.2f 秒 ---\n", result.ActualTime)
	fmt.Println("=================================================")
}
