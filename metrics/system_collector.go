package metrics

import (
	"context"
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// SystemMetricsCollector 系统指标采集器
// 周期性采集 Go 运行时与进程级资源占用，喂给 Prometheus 指标
type SystemMetricsCollector struct {
	pm       *PrometheusMetrics
	interval time.Duration
	ctx      context.Context
	cancel   context.CancelFunc
	proc     *process.Process
}

// NewSystemMetricsCollector 创建系统指标采集器
func NewSystemMetricsCollector(interval time.Duration) *SystemMetricsCollector {
	ctx, cancel := context.WithCancel(context.Background())
	proc, _ := process.NewProcess(int32(os.Getpid()))
	return &SystemMetricsCollector{
		pm:       GetPrometheusMetrics(),
		interval: interval,
		ctx:      ctx,
		cancel:   cancel,
		proc:     proc,
	}
}

// Start 启动采集
func (smc *SystemMetricsCollector) Start() {
	go smc.collectLoop()
}

// Stop 停止采集
func (smc *SystemMetricsCollector) Stop() {
	if smc.cancel != nil {
		smc.cancel()
	}
}

func (smc *SystemMetricsCollector) collectLoop() {
	ticker := time.NewTicker(smc.interval)
	defer ticker.Stop()

	smc.collect()

	for {
		select {
		case <-smc.ctx.Done():
			return
		case <-ticker.C:
			smc.collect()
		}
	}
}

func (smc *SystemMetricsCollector) collect() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	smc.pm.SetGoroutineCount(runtime.NumGoroutine())
	smc.pm.SetMemoryAlloc(m.Alloc)

	if smc.proc == nil {
		return
	}

	if cpuPercent, err := smc.proc.CPUPercent(); err == nil {
		smc.pm.SetProcessCPU(cpuPercent)
	} else if percentages, err := cpu.Percent(0, false); err == nil && len(percentages) > 0 {
		// 进程级采集失败时退回系统级
		smc.pm.SetProcessCPU(percentages[0])
	}

	if memInfo, err := smc.proc.MemoryInfo(); err == nil {
		smc.pm.SetProcessMemoryMB(float64(memInfo.RSS) / 1024 / 1024)
	}
}

// SystemSnapshot 进程资源快照，供状态接口返回
type SystemSnapshot struct {
	Timestamp     time.Time `json:"timestamp"`
	CPUPercent    float64   `json:"cpu_percent"`
	MemoryMB      float64   `json:"memory_mb"`
	MemoryPercent float64   `json:"memory_percent"`
	Goroutines    int       `json:"goroutines"`
}

// Snapshot 采集一次进程资源快照
func (smc *SystemMetricsCollector) Snapshot() SystemSnapshot {
	snap := SystemSnapshot{
		Timestamp:  time.Now(),
		Goroutines: runtime.NumGoroutine(),
	}
	if smc.proc == nil {
		return snap
	}

	if cpuPercent, err := smc.proc.CPUPercent(); err == nil {
		snap.CPUPercent = cpuPercent
	}
	if memInfo, err := smc.proc.MemoryInfo(); err == nil {
		snap.MemoryMB = float64(memInfo.RSS) / 1024 / 1024
		if memStat, err := mem.VirtualMemory(); err == nil && memStat.Total > 0 {
			snap.MemoryPercent = float64(memInfo.RSS) / float64(memStat.Total) * 100
		}
	}
	return snap
}
