package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
)

type quote struct {
	Provider string  `json:"provider"`
	Fee      float64 `json:"fee"`
}

func TestGetJSON(t *testing.T) {
	ctx := context.Background()
	db, mock := redismock.NewClientMock()
	store := NewStore(db)

	mock.ExpectGet("lv:bridge_Ethereum_Arbitrum_10000").SetVal(`{"provider":"Li.Fi","fee":4.2}`)
	mock.ExpectGet("lv:bridge_Ethereum_Base_10000").RedisNil()
	mock.ExpectGet("lv:broken").SetErr(errors.New("connection reset"))

	var q quote
	ok, err := store.GetJSON(ctx, "bridge_Ethereum_Arbitrum_10000", &q)
	if err != nil || !ok {
		t.Fatalf("GetJSON hit: ok=%v err=%v", ok, err)
	}
	if q.Provider != "Li.Fi" || q.Fee != 4.2 {
		t.Errorf("decoded %+v", q)
	}

	ok, err = store.GetJSON(ctx, "bridge_Ethereum_Base_10000", &q)
	if err != nil || ok {
		t.Errorf("miss should be (false, nil), got (%v, %v)", ok, err)
	}

	if _, err := store.GetJSON(ctx, "broken", &q); err == nil {
		t.Error("expected transport error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestSetJSON(t *testing.T) {
	ctx := context.Background()
	db, mock := redismock.NewClientMock()
	store := NewStore(db)

	mock.ExpectSet("lv:price_ethereum", `{"provider":"coingecko","fee":0}`, time.Minute).SetVal("OK")

	if err := store.SetJSON(ctx, "price_ethereum", quote{Provider: "coingecko"}, time.Minute); err != nil {
		t.Fatalf("SetJSON: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestLock(t *testing.T) {
	ctx := context.Background()
	db, mock := redismock.NewClientMock()
	store := NewStore(db)
	store.tokenFn = func() string { return "tok-1" }

	mock.ExpectSetNX("lv:lock:pools", "tok-1", 5*time.Second).SetVal(true)
	mock.ExpectEvalSha(store.unlockSc.Hash(), []string{"lv:lock:pools"}, "tok-1").SetVal(int64(1))
	mock.ExpectSetNX("lv:lock:pools", "tok-1", 5*time.Second).SetVal(false)

	release, err := store.Lock(ctx, "pools", 5*time.Second)
	if err != nil {
		t.Fatalf("Lock: %v", err)
	}
	release()
	release()

	if _, err := store.Lock(ctx, "pools", 5*time.Second); !errors.Is(err, ErrLockHeld) {
		t.Errorf("second lock err = %v, want ErrLockHeld", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}
