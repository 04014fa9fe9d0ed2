package redis

import (
	"context"
	"testing"
	"time"

	"github.com/MrSnakeDoc/timejump/internal/logger"
)

func validOptions() ConnectOptions {
	return ConnectOptions{
		Addr:           "127.0.0.1:0",
		ConnectTimeout: 50 * time.Millisecond,
		RetryInterval:  10 * time.Millisecond,
		MaxWait:        20 * time.Millisecond,
		PingTimeout:    10 * time.Millisecond,
		WarnThreshold:  1,
	}
}

func TestConnectOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ConnectOptions)
		wantErr bool
	}{
		{name: "valid", mutate: func(*ConnectOptions) {}},
		{name: "empty addr", mutate: func(o *ConnectOptions) { o.Addr = "" }, wantErr: true},
		{name: "zero connect timeout", mutate: func(o *ConnectOptions) { o.ConnectTimeout = 0 }, wantErr: true},
		{name: "zero retry interval", mutate: func(o *ConnectOptions) { o.RetryInterval = 0 }, wantErr: true},
		{name: "zero max wait", mutate: func(o *ConnectOptions) { o.MaxWait = 0 }, wantErr: true},
		{name: "zero ping timeout", mutate: func(o *ConnectOptions) { o.PingTimeout = 0 }, wantErr: true},
		{name: "negative warn threshold", mutate: func(o *ConnectOptions) { o.WarnThreshold = -1 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := validOptions()
			tt.mutate(&opts)
			err := opts.validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNextWait(t *testing.T) {
	tests := []struct {
		wait, max, want time.Duration
	}{
		{wait: time.Second, max: 10 * time.Second, want: 2 * time.Second},
		{wait: 4 * time.Second, max: 5 * time.Second, want: 5 * time.Second},
		{wait: 10 * time.Second, max: 10 * time.Second, want: 10 * time.Second},
	}

	for _, tt := range tests {
		if got := nextWait(tt.wait, tt.max); got != tt.want {
			t.Errorf("nextWait(%v, %v) = %v, want %v", tt.wait, tt.max, got, tt.want)
		}
	}
}

func TestConnectGivesUp(t *testing.T) {
	start := time.Now()
	client, err := Connect(context.Background(), validOptions(), logger.Nop())
	if err == nil {
		t.Fatal("Connect() should fail against an unreachable address")
	}
	if client != nil {
		t.Error("Connect() should not return a client on failure")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Connect() took %v, want it bounded by ConnectTimeout", elapsed)
	}
}

func TestConnectRejectsInvalidOptions(t *testing.T) {
	opts := validOptions()
	opts.Addr = ""
	if _, err := Connect(context.Background(), opts, logger.Nop()); err == nil {
		t.Fatal("Connect() should reject invalid options")
	}
}
