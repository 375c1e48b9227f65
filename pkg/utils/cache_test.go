package utils

import (
	"testing"
	"time"
)

func TestRateCache_SetGetDelete(t *testing.T) {
	SetRateCache("fx-test:GBP", 1.27, time.Minute)

	got, ok := GetRateCache("fx-test:GBP")
	if !ok {
		t.Fatal("期望命中缓存")
	}
	if got != 1.27 {
		t.Errorf("got %v, want 1.27", got)
	}

	DeleteRateCache("fx-test:GBP")
	if _, ok := GetRateCache("fx-test:GBP"); ok {
		t.Error("删除后不应命中")
	}
}

func TestRateCache_Expiration(t *testing.T) {
	// 过期时间按秒存储，负 TTL 保证立即过期
	SetRateCache("fx-test:EXPIRED", 2, -2*time.Second)

	if _, ok := GetRateCache("fx-test:EXPIRED"); ok {
		t.Error("过期项不应命中")
	}
}

func TestRateCache_Miss(t *testing.T) {
	if _, ok := GetRateCache("fx-test:NEVER-SET"); ok {
		t.Error("未写入的键不应命中")
	}
}
