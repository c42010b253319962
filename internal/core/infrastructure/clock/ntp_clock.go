package clock

import (
	"time"

	"github.com/beevik/ntp"
	infraClock "github.com/mintforge/v1/pkg/interfaces/infrastructure/clock"
)

// NTPClock 通过NTP周期性校正偏移的时钟实现
//
// 拍卖的起拍时间与价格衰减以真实时间为准，节点本地时钟漂移
// 会直接影响价格计算，生产部署建议启用NTP时间源。
type NTPClock struct {
	server         string
	offset         time.Duration
	lastSync       time.Time
	syncInterval   time.Duration
	backoff        time.Duration
	backoffInitial time.Duration
	backoffMax     time.Duration
	lastError      error
}

// NewNTPClock 创建NTP时钟
// server 例如 "pool.ntp.org"，syncInterval 建议 5~10 分钟
func NewNTPClock(server string, syncInterval time.Duration) (infraClock.Clock, error) {
	c := &NTPClock{
		server:         server,
		syncInterval:   syncInterval,
		backoffInitial: 5 * time.Second,
		backoffMax:     5 * time.Minute,
	}
	if err := c.sync(); err != nil {
		// 初始化失败不致命，置零偏移，后续重试
		c.offset = 0
		c.lastError = err
	}
	return c, nil
}

func (c *NTPClock) Now() time.Time {
	c.maybeSync()
	return time.Now().Add(c.offset)
}

func (c *NTPClock) Since(t time.Time) time.Duration { return c.Now().Sub(t) }
func (c *NTPClock) Unix() int64                     { return c.Now().Unix() }
func (c *NTPClock) UnixNano() int64                 { return c.Now().UnixNano() }

func (c *NTPClock) maybeSync() {
	// 动态计算有效同步间隔（含退避）
	effective := c.syncInterval
	if c.backoff > 0 {
		if c.backoff > c.backoffMax {
			c.backoff = c.backoffMax
		}
		effective = c.backoff
	}
	if time.Since(c.lastSync) < effective {
		return
	}
	if err := c.sync(); err != nil {
		c.lastError = err
		if c.backoff == 0 {
			c.backoff = c.backoffInitial
		} else {
			c.backoff *= 2
		}
		return
	}
	// 成功，清零退避
	c.backoff = 0
}

func (c *NTPClock) sync() error {
	resp, err := ntp.Query(c.server)
	if err != nil {
		return err
	}
	c.offset = resp.ClockOffset
	c.lastSync = time.Now()
	c.lastError = nil
	return nil
}
