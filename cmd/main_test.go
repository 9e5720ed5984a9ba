package main

import (
	"context"
	"io"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/scooter-rental/internal/booking"
	"github.com/ukydev/scooter-rental/internal/config"
	"github.com/ukydev/scooter-rental/internal/notify"
)

func quietLogger() *log.Logger {
	l := log.New()
	l.SetOutput(io.Discard)
	return l
}

func TestNewLogger(t *testing.T) {
	l := newLogger(&config.Config{LogLevel: "debug", LogFormat: "json"})
	assert.Equal(t, log.DebugLevel, l.GetLevel())
	assert.IsType(t, &log.JSONFormatter{}, l.Formatter)

	l = newLogger(&config.Config{LogLevel: "loud"})
	assert.Equal(t, log.InfoLevel, l.GetLevel())
	assert.IsType(t, &log.TextFormatter{}, l.Formatter)
}

func TestBuildNotifier(t *testing.T) {
	logger := quietLogger()

	n, closeFn, err := buildNotifier(&config.Config{Notify: config.Notify{Driver: "log"}}, logger)
	require.NoError(t, err)
	assert.IsType(t, &notify.LogNotifier{}, n)
	closeFn()

	n, _, err = buildNotifier(&config.Config{Notify: config.Notify{Driver: "none"}}, logger)
	require.NoError(t, err)
	assert.IsType(t, notify.Nop{}, n)

	n, _, err = buildNotifier(&config.Config{Notify: config.Notify{Driver: "brevo"}}, logger)
	require.NoError(t, err)
	assert.IsType(t, &notify.LogNotifier{}, n, "unconfigured brevo falls back to log")

	n, _, err = buildNotifier(&config.Config{Notify: config.Notify{
		Driver: "brevo", BrevoAPIKey: "key", BrevoSender: "desk@rental.test", AdminEmail: "owner@rental.test",
	}}, logger)
	require.NoError(t, err)
	assert.Len(t, n.(notify.Multi), 2)

	_, _, err = buildNotifier(&config.Config{Notify: config.Notify{Driver: "mqtt"}}, logger)
	assert.Error(t, err, "mqtt without a broker")

	_, _, err = buildNotifier(&config.Config{Notify: config.Notify{Driver: "pigeon"}}, logger)
	assert.Error(t, err)
}

func TestOpenStore_Memory(t *testing.T) {
	store, database, closeFn, err := openStore(context.Background(), &config.Config{Store: "memory"}, quietLogger())
	require.NoError(t, err)
	defer closeFn()
	assert.NotNil(t, store.Bookings)
	assert.Nil(t, database)
}

func TestNewLocker_FallsBackToLocal(t *testing.T) {
	l := newLocker(&config.Config{Booking: config.Booking{Lock: "mongo", LockWait: time.Second}}, nil)
	assert.IsType(t, &booking.LocalLocker{}, l)
}
