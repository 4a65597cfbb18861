/*
 * Copyright 2026 The Tasklane Authors. All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tasklane/tasklane/server"
	"github.com/tasklane/tasklane/server/backend/database/firestore"
	"github.com/tasklane/tasklane/server/backend/database/mongo"
	"github.com/tasklane/tasklane/server/backend/messagebroker"
	"github.com/tasklane/tasklane/server/logging"
)

var (
	gracefulTimeout = 10 * time.Second
)

var (
	flagConfPath    string
	flagLogLevel    string
	flagLogEncoding string

	rpcShutdownTimeout time.Duration
	tokenDuration      time.Duration
	profileCacheTTL    time.Duration

	housekeepingInviteRetention    time.Duration
	housekeepingExpiredInviteGrace time.Duration

	mongoConnectionURI     string
	mongoConnectionTimeout time.Duration
	mongoDatabase          string
	mongoPingTimeout       time.Duration

	firestoreProjectID         string
	firestoreCredentialsFile   string
	firestoreConnectionTimeout time.Duration

	kafkaAddresses    string
	kafkaTopic        string
	kafkaWriteTimeout time.Duration

	notificationRequestTimeout time.Duration

	conf = server.NewConfig()
)

func newServerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "server [options]",
		Short: "Start Tasklane server",
		RunE: func(cmd *cobra.Command, args []string) error {
			conf.RPC.ShutdownTimeout = rpcShutdownTimeout.String()

			conf.Backend.TokenDuration = tokenDuration.String()
			conf.Backend.ProfileCacheTTL = profileCacheTTL.String()

			conf.Housekeeping.InviteRetention = housekeepingInviteRetention.String()
			conf.Housekeeping.ExpiredInviteGrace = housekeepingExpiredInviteGrace.String()

			conf.Notification.RequestTimeout = notificationRequestTimeout.String()

			if mongoConnectionURI != "" {
				conf.Mongo = &mongo.Config{
					ConnectionURI:     mongoConnectionURI,
					ConnectionTimeout: mongoConnectionTimeout.String(),
					Database:          mongoDatabase,
					PingTimeout:       mongoPingTimeout.String(),
				}
			}

			if firestoreProjectID != "" {
				conf.Firestore = &firestore.Config{
					ProjectID:         firestoreProjectID,
					CredentialsFile:   firestoreCredentialsFile,
					ConnectionTimeout: firestoreConnectionTimeout.String(),
				}
			}

			if kafkaAddresses != "" {
				conf.Kafka = &messagebroker.Config{
					Addresses:    kafkaAddresses,
					Topic:        kafkaTopic,
					WriteTimeout: kafkaWriteTimeout.String(),
				}
			}

			// If config file is given, command-line arguments will be overwritten.
			if flagConfPath != "" {
				parsed, err := server.NewConfigFromFile(flagConfPath)
				if err != nil {
					return err
				}
				conf = parsed
			}

			if err := logging.SetEncoding(flagLogEncoding); err != nil {
				return err
			}
			if err := logging.SetLogLevel(flagLogLevel); err != nil {
				return err
			}

			t, err := server.New(conf)
			if err != nil {
				return err
			}

			if err := t.Start(); err != nil {
				return err
			}

			if code := handleSignal(t); code != 0 {
				return fmt.Errorf("exit code: %d", code)
			}

			return nil
		},
	}
}

func handleSignal(t *server.Tasklane) int {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	var sig os.Signal
	select {
	case s := <-sigCh:
		sig = s
	case <-t.ShutdownCh():
		// tasklane is already shutdown
		return 0
	}

	graceful := false
	if sig == syscall.SIGINT || sig == syscall.SIGTERM {
		graceful = true
	}

	gracefulCh := make(chan struct{})
	go func() {
		if err := t.Shutdown(graceful); err != nil {
			logging.DefaultLogger().Error(err)
			return
		}
		close(gracefulCh)
	}()

	select {
	case <-sigCh:
		return 1
	case <-time.After(gracefulTimeout):
		return 1
	case <-gracefulCh:
		return 0
	}
}

func init() {
	cmd := newServerCmd()
	cmd.Flags().StringVarP(
		&flagConfPath,
		"config",
		"c",
		"",
		"Config path",
	)
	cmd.Flags().StringVarP(
		&flagLogLevel,
		"log-level",
		"l",
		"info",
		"Log level: debug, info, warn, error, panic, fatal",
	)
	cmd.Flags().StringVar(
		&flagLogEncoding,
		"log-encoding",
		"console",
		"Log encoding: console, json",
	)
	cmd.Flags().IntVar(
		&conf.RPC.Port,
		"rpc-port",
		server.DefaultRPCPort,
		"RPC port",
	)
	cmd.Flags().StringVar(
		&conf.RPC.CertFile,
		"rpc-cert-file",
		"",
		"RPC certification file's path",
	)
	cmd.Flags().StringVar(
		&conf.RPC.KeyFile,
		"rpc-key-file",
		"",
		"RPC key file's path",
	)
	cmd.Flags().Int64Var(
		&conf.RPC.MaxRequestBytes,
		"rpc-max-request-bytes",
		server.DefaultRPCMaxRequestBytes,
		"Maximum client request size in bytes the server will accept.",
	)
	cmd.Flags().DurationVar(
		&rpcShutdownTimeout,
		"rpc-shutdown-timeout",
		server.DefaultRPCShutdownTimeout,
		"How long a graceful shutdown waits for in-flight requests.",
	)
	cmd.Flags().BoolVar(
		&conf.RPC.FirebaseAuth,
		"rpc-firebase-auth",
		false,
		"Accept Firebase ID tokens. Requires --firestore-project-id.",
	)
	cmd.Flags().IntVar(
		&conf.Profiling.Port,
		"profiling-port",
		server.DefaultProfilingPort,
		"Profiling port",
	)
	cmd.Flags().BoolVar(
		&conf.Profiling.EnablePprof,
		"enable-pprof",
		false,
		"Enable runtime profiling data via HTTP server.",
	)
	cmd.Flags().StringVar(
		&conf.Housekeeping.Schedule,
		"housekeeping-schedule",
		server.DefaultHousekeepingSchedule,
		"Cron spec of the housekeeping runs",
	)
	cmd.Flags().DurationVar(
		&housekeepingInviteRetention,
		"housekeeping-invite-retention",
		server.DefaultHousekeepingInviteRetention,
		"How long used invites are kept after creation",
	)
	cmd.Flags().DurationVar(
		&housekeepingExpiredInviteGrace,
		"housekeeping-expired-invite-grace",
		server.DefaultHousekeepingExpiredInviteGrace,
		"How long pending invites are kept after they expire",
	)
	cmd.Flags().StringVar(
		&conf.Backend.SecretKey,
		"backend-secret-key",
		server.DefaultSecretKey,
		"The secret key for signing access tokens.",
	)
	cmd.Flags().DurationVar(
		&tokenDuration,
		"token-duration",
		server.DefaultTokenDuration,
		"The lifetime of an access token.",
	)
	cmd.Flags().IntVar(
		&conf.Backend.ProfileCacheSize,
		"profile-cache-size",
		server.DefaultProfileCacheSize,
		"The number of user profiles kept in memory.",
	)
	cmd.Flags().DurationVar(
		&profileCacheTTL,
		"profile-cache-ttl",
		server.DefaultProfileCacheTTL,
		"TTL value to set when caching user profiles.",
	)
	cmd.Flags().IntVar(
		&conf.Backend.EnrichmentConcurrency,
		"enrichment-concurrency",
		server.DefaultEnrichmentConcurrency,
		"The number of profile lookups run in parallel for the member directory.",
	)
	cmd.Flags().StringVar(
		&conf.Backend.Hostname,
		"hostname",
		"",
		"Tasklane Server Hostname",
	)
	cmd.Flags().StringVar(
		&mongoConnectionURI,
		"mongo-connection-uri",
		"",
		"MongoDB's connection URI",
	)
	cmd.Flags().DurationVar(
		&mongoConnectionTimeout,
		"mongo-connection-timeout",
		server.DefaultMongoConnectionTimeout,
		"Mongo DB's connection timeout",
	)
	cmd.Flags().StringVar(
		&mongoDatabase,
		"mongo-database",
		server.DefaultMongoDatabase,
		"Tasklane's database name in MongoDB",
	)
	cmd.Flags().DurationVar(
		&mongoPingTimeout,
		"mongo-ping-timeout",
		server.DefaultMongoPingTimeout,
		"Mongo DB's ping timeout",
	)
	cmd.Flags().StringVar(
		&firestoreProjectID,
		"firestore-project-id",
		"",
		"Google Cloud project of the Firestore database",
	)
	cmd.Flags().StringVar(
		&firestoreCredentialsFile,
		"firestore-credentials-file",
		"",
		"Service account file. Application default credentials are used when empty.",
	)
	cmd.Flags().DurationVar(
		&firestoreConnectionTimeout,
		"firestore-connection-timeout",
		server.DefaultFirestoreConnectionTimeout,
		"Firestore's connection timeout",
	)
	cmd.Flags().StringVar(
		&kafkaAddresses,
		"kafka-addresses",
		"",
		"Comma-separated list of Kafka brokers",
	)
	cmd.Flags().StringVar(
		&kafkaTopic,
		"kafka-topic",
		server.DefaultKafkaTopic,
		"Kafka topic of workspace events",
	)
	cmd.Flags().DurationVar(
		&kafkaWriteTimeout,
		"kafka-write-timeout",
		server.DefaultKafkaWriteTimeout,
		"Kafka write timeout",
	)
	cmd.Flags().StringVar(
		&conf.Notification.WebhookURL,
		"notification-webhook-url",
		"",
		"Webhook that delivers chat notifications. Empty disables delivery.",
	)
	cmd.Flags().StringVar(
		&conf.Notification.WebhookToken,
		"notification-webhook-token",
		"",
		"Bearer token sent to the notification webhook",
	)
	cmd.Flags().DurationVar(
		&notificationRequestTimeout,
		"notification-request-timeout",
		server.DefaultNotificationRequestTimeout,
		"Timeout of a single notification delivery",
	)
	cmd.Flags().IntVar(
		&conf.Notification.MaxRetries,
		"notification-max-retries",
		server.DefaultNotificationMaxRetries,
		"Maximum number of retries of a notification delivery",
	)
	cmd.Flags().IntVar(
		&conf.Notification.Concurrency,
		"notification-concurrency",
		server.DefaultNotificationConcurrency,
		"The number of notifications delivered in parallel",
	)

	rootCmd.AddCommand(cmd)
}
