/*
Copyright SecureKey Technologies Inc. All Rights Reserved.
SPDX-License-Identifier: Apache-2.0
*/

package startcmd

import (
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/mux"
	couchdbstore "github.com/hyperledger/aries-framework-go-ext/component/storage/couchdb"
	"github.com/hyperledger/aries-framework-go-ext/component/storage/mongodb"
	"github.com/hyperledger/aries-framework-go-ext/component/storage/mysql"
	"github.com/hyperledger/aries-framework-go/component/log"
	"github.com/hyperledger/aries-framework-go/component/storage/leveldb"
	"github.com/hyperledger/aries-framework-go/component/storageutil/mem"
	"github.com/hyperledger/aries-framework-go/spi/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/spf13/cobra"

	"github.com/hyperledger/aries-proof-go/pkg/anoncreds/ledgercache"
	client "github.com/hyperledger/aries-proof-go/pkg/client/presentproof"
	"github.com/hyperledger/aries-proof-go/pkg/controller"
	"github.com/hyperledger/aries-proof-go/pkg/didcomm/transport"
	arieshttp "github.com/hyperledger/aries-proof-go/pkg/didcomm/transport/http"
	"github.com/hyperledger/aries-proof-go/pkg/didcomm/transport/ws"
	"github.com/hyperledger/aries-proof-go/pkg/framework/context"
	mockanoncreds "github.com/hyperledger/aries-proof-go/pkg/mock/anoncreds"
)

const (
	// api host flag.
	agentHostFlagName      = "api-host"
	agentHostEnvKey        = "ARIESD_API_HOST"
	agentHostFlagShorthand = "a"
	agentHostFlagUsage     = "Host Name:Port." +
		" Alternatively, this can be set with the following environment variable: " + agentHostEnvKey

	// api token flag.
	agentTokenFlagName      = "api-token"
	agentTokenEnvKey        = "ARIESD_API_TOKEN" // nolint:gosec
	agentTokenFlagShorthand = "t"
	agentTokenFlagUsage     = "Check for bearer token in the authorization header (optional)." +
		" The inbound message route is not covered." +
		" Alternatively, this can be set with the following environment variable: " + agentTokenEnvKey

	databaseTypeFlagName      = "database-type"
	databaseTypeEnvKey        = "ARIESD_DATABASE_TYPE"
	databaseTypeFlagShorthand = "q"
	databaseTypeFlagUsage     = "The type of database to use for sessions, connections, mailboxes and the wallet. " +
		"Supported options: mem, leveldb, couchdb, mysql, mongodb. " +
		" Alternatively, this can be set with the following environment variable: " + databaseTypeEnvKey

	databaseURLFlagName      = "database-url"
	databaseURLEnvKey        = "ARIESD_DATABASE_URL"
	databaseURLFlagShorthand = "v"
	databaseURLFlagUsage     = "The URL of the database. Not needed if using memstore. For leveldb, the database path." +
		" For CouchDB, include the username:password@ text if required. " +
		" Alternatively, this can be set with the following environment variable: " + databaseURLEnvKey

	databasePrefixFlagName      = "database-prefix"
	databasePrefixEnvKey        = "ARIESD_DATABASE_PREFIX"
	databasePrefixFlagShorthand = "u"
	databasePrefixFlagUsage     = "An optional prefix to be used when creating and retrieving underlying databases. " +
		" Alternatively, this can be set with the following environment variable: " + databasePrefixEnvKey

	databaseTimeoutFlagName  = "database-timeout"
	databaseTimeoutFlagUsage = "Total time in seconds to wait until the db is available before giving up." +
		" Default: " + databaseTimeoutDefault + " seconds." +
		" Alternatively, this can be set with the following environment variable: " + databaseTimeoutEnvKey
	databaseTimeoutEnvKey  = "ARIESD_DATABASE_TIMEOUT"
	databaseTimeoutDefault = "30"

	// webhook url flag.
	agentWebhookFlagName      = "webhook-url"
	agentWebhookEnvKey        = "ARIESD_WEBHOOK_URL"
	agentWebhookFlagShorthand = "w"
	agentWebhookFlagUsage     = "URL to send session state notifications to." +
		" This flag can be repeated, allowing for multiple listeners." +
		" Alternatively, this can be set with the following environment variable (in CSV format): " + agentWebhookEnvKey

	// websocket origin flag.
	agentWSOriginFlagName  = "ws-origin"
	agentWSOriginEnvKey    = "ARIESD_WS_ORIGIN"
	agentWSOriginFlagUsage = "Origin host pattern allowed to subscribe to notifications over websocket." +
		" This flag can be repeated." +
		" Alternatively, this can be set with the following environment variable (in CSV format): " + agentWSOriginEnvKey

	// log level.
	agentLogLevelFlagName  = "log-level"
	agentLogLevelEnvKey    = "ARIESD_LOG_LEVEL"
	agentLogLevelFlagUsage = "Log level." +
		" Possible values [INFO] [DEBUG] [ERROR] [WARNING] [CRITICAL] . Defaults to INFO if not set." +
		" Alternatively, this can be set with the following environment variable: " + agentLogLevelEnvKey

	// outbound transport flag.
	agentOutboundTransportFlagName      = "outbound-transport"
	agentOutboundTransportEnvKey        = "ARIESD_OUTBOUND_TRANSPORT"
	agentOutboundTransportFlagShorthand = "o"
	agentOutboundTransportFlagUsage     = "Outbound transport type." +
		" This flag can be repeated, allowing for multiple transports." +
		" Possible values [http] [ws]. Defaults to http if not set." +
		" Alternatively, this can be set with the following environment variable: " + agentOutboundTransportEnvKey

	// outbound retry flags.
	agentOutboundRetriesFlagName  = "outbound-retries"
	agentOutboundRetriesEnvKey    = "ARIESD_OUTBOUND_RETRIES"
	agentOutboundRetriesFlagUsage = "Number of retries of a failed http delivery. Defaults to 0." +
		" Alternatively, this can be set with the following environment variable: " + agentOutboundRetriesEnvKey

	agentOutboundRetryIntervalFlagName  = "outbound-retry-interval"
	agentOutboundRetryIntervalEnvKey    = "ARIESD_OUTBOUND_RETRY_INTERVAL"
	agentOutboundRetryIntervalFlagUsage = "Wait between http delivery retries, e.g. 500ms. Defaults to 1s." +
		" Alternatively, this can be set with the following environment variable: " + agentOutboundRetryIntervalEnvKey

	agentTLSCertFileFlagName      = "tls-cert-file"
	agentTLSCertFileEnvKey        = "TLS_CERT_FILE"
	agentTLSCertFileFlagShorthand = "c"
	agentTLSCertFileFlagUsage     = "tls certificate file." +
		" Alternatively, this can be set with the following environment variable: " + agentTLSCertFileEnvKey

	agentTLSKeyFileFlagName      = "tls-key-file"
	agentTLSKeyFileEnvKey        = "TLS_KEY_FILE"
	agentTLSKeyFileFlagShorthand = "k"
	agentTLSKeyFileFlagUsage     = "tls key file." +
		" Alternatively, this can be set with the following environment variable: " + agentTLSKeyFileEnvKey

	// ledger flags.
	agentLedgerSeedFlagName  = "ledger-seed"
	agentLedgerSeedEnvKey    = "ARIESD_LEDGER_SEED"
	agentLedgerSeedFlagUsage = "JSON file of schemas, credential definitions and revocation registry definitions" +
		" loaded into the in-memory ledger at start." +
		" Alternatively, this can be set with the following environment variable: " + agentLedgerSeedEnvKey

	agentLedgerCacheSizeFlagName  = "ledger-cache-size"
	agentLedgerCacheSizeEnvKey    = "ARIESD_LEDGER_CACHE_SIZE"
	agentLedgerCacheSizeFlagUsage = "Number of ledger objects kept in memory. Defaults to 512." +
		" Alternatively, this can be set with the following environment variable: " + agentLedgerCacheSizeEnvKey

	// gateway key flag.
	agentGatewayKeyFlagName  = "gateway-key"
	agentGatewayKeyEnvKey    = "ARIESD_GATEWAY_KEY" // nolint:gosec
	agentGatewayKeyFlagUsage = "Key of the credential system proof digests. A random key is used if not set," +
		" which makes presentations unverifiable across restarts." +
		" Alternatively, this can be set with the following environment variable: " + agentGatewayKeyEnvKey

	// metrics flag.
	agentMetricsPathFlagName  = "metrics-path"
	agentMetricsPathEnvKey    = "ARIESD_METRICS_PATH"
	agentMetricsPathFlagUsage = "Path of the prometheus metrics endpoint. Defaults to /metrics." +
		" Alternatively, this can be set with the following environment variable: " + agentMetricsPathEnvKey

	// serialize threads flag.
	agentSerializeThreadsFlagName  = "serialize-threads"
	agentSerializeThreadsEnvKey    = "ARIESD_SERIALIZE_THREADS"
	agentSerializeThreadsFlagUsage = "Make concurrent operations on one thread wait for each other." +
		" Possible values [true] [false]. Defaults to false if not set." +
		" Alternatively, this can be set with the following environment variable: " + agentSerializeThreadsEnvKey

	httpProtocol      = "http"
	websocketProtocol = "ws"

	databaseTypeMemOption     = "mem"
	databaseTypeLevelDBOption = "leveldb"
	databaseTypeCouchDBOption = "couchdb"
	databaseTypeMYSQLDBOption = "mysql"
	databaseTypeMongoDBOption = "mongodb"

	inboundPath = "/inbound/{connection_id}"

	defaultMetricsPath     = "/metrics"
	defaultLedgerCacheSize = 512
	defaultRetryInterval   = time.Second
	gatewayKeySize         = 32
)

var (
	errMissingHost = errors.New("host not provided")
	logger         = log.New("aries-framework/agent-rest")
)

type agentParameters struct {
	server                  server
	host, token             string
	tlsCertFile, tlsKeyFile string
	webhookURLs, wsOrigins  []string
	outboundTransports      []string
	outboundRetries         uint64
	outboundRetryInterval   time.Duration
	ledgerSeed              string
	ledgerCacheSize         int
	gatewayKey              []byte
	metricsPath             string
	serializeThreads        bool
	dbParam                 *dbParam
}

type dbParam struct {
	dbType  string
	url     string
	prefix  string
	timeout uint64
}

// nolint:gochecknoglobals
var supportedStorageProviders = map[string]func(url, prefix string) (storage.Provider, error){
	databaseTypeMemOption: func(_, _ string) (storage.Provider, error) { // nolint:unparam
		return mem.NewProvider(), nil
	},
	databaseTypeLevelDBOption: func(path, _ string) (storage.Provider, error) { // nolint:unparam
		return leveldb.NewProvider(path), nil
	},
	databaseTypeCouchDBOption: func(url, prefix string) (storage.Provider, error) {
		return couchdbstore.NewProvider(url, couchdbstore.WithDBPrefix(prefix))
	},
	databaseTypeMYSQLDBOption: func(url, prefix string) (storage.Provider, error) {
		return mysql.NewProvider(url, mysql.WithDBPrefix(prefix))
	},
	databaseTypeMongoDBOption: func(url, prefix string) (storage.Provider, error) {
		return mongodb.NewProvider(url, mongodb.WithDBPrefix(prefix))
	},
}

type server interface {
	ListenAndServe(host string, router http.Handler, certFile, keyFile string) error
}

// HTTPServer represents an actual server implementation.
type HTTPServer struct{}

// ListenAndServe starts the server using the standard Go HTTP server implementation.
func (s *HTTPServer) ListenAndServe(host string, router http.Handler, certFile, keyFile string) error {
	if certFile != "" && keyFile != "" {
		return http.ListenAndServeTLS(host, certFile, keyFile, router)
	}

	return http.ListenAndServe(host, router)
}

// Cmd returns the Cobra start command.
func Cmd(server server) (*cobra.Command, error) {
	startCmd := createStartCMD(server)

	createFlags(startCmd)

	return startCmd, nil
}

func createStartCMD(server server) *cobra.Command { //nolint: funlen, gocyclo
	return &cobra.Command{
		Use:   "start",
		Short: "Start an agent",
		Long:  `Start a present-proof agent controller`,
		RunE: func(cmd *cobra.Command, args []string) error {
			// log level
			logLevel, err := getUserSetVar(cmd, agentLogLevelFlagName, agentLogLevelEnvKey, true)
			if err != nil {
				return err
			}

			err = setLogLevel(logLevel)
			if err != nil {
				return err
			}

			host, err := getUserSetVar(cmd, agentHostFlagName, agentHostEnvKey, false)
			if err != nil {
				return err
			}

			token, err := getUserSetVar(cmd, agentTokenFlagName, agentTokenEnvKey, true)
			if err != nil {
				return err
			}

			dbParam, err := getDBParam(cmd)
			if err != nil {
				return err
			}

			webhookURLs, err := getUserSetVars(cmd, agentWebhookFlagName, agentWebhookEnvKey, true)
			if err != nil {
				return err
			}

			wsOrigins, err := getUserSetVars(cmd, agentWSOriginFlagName, agentWSOriginEnvKey, true)
			if err != nil {
				return err
			}

			outboundTransports, err := getUserSetVars(cmd, agentOutboundTransportFlagName,
				agentOutboundTransportEnvKey, true)
			if err != nil {
				return err
			}

			retries, retryInterval, err := getRetryParams(cmd)
			if err != nil {
				return err
			}

			tlsCertFile, err := getUserSetVar(cmd, agentTLSCertFileFlagName, agentTLSCertFileEnvKey, true)
			if err != nil {
				return err
			}

			tlsKeyFile, err := getUserSetVar(cmd, agentTLSKeyFileFlagName, agentTLSKeyFileEnvKey, true)
			if err != nil {
				return err
			}

			ledgerSeed, err := getUserSetVar(cmd, agentLedgerSeedFlagName, agentLedgerSeedEnvKey, true)
			if err != nil {
				return err
			}

			cacheSize, err := getIntValue(cmd, agentLedgerCacheSizeFlagName, agentLedgerCacheSizeEnvKey,
				defaultLedgerCacheSize)
			if err != nil {
				return err
			}

			gatewayKey, err := getGatewayKey(cmd)
			if err != nil {
				return err
			}

			metricsPath, err := getUserSetVar(cmd, agentMetricsPathFlagName, agentMetricsPathEnvKey, true)
			if err != nil {
				return err
			}

			if metricsPath == "" {
				metricsPath = defaultMetricsPath
			}

			serializeThreads, err := getBoolValue(cmd, agentSerializeThreadsFlagName, agentSerializeThreadsEnvKey)
			if err != nil {
				return err
			}

			parameters := &agentParameters{
				server:                server,
				host:                  host,
				token:                 token,
				dbParam:               dbParam,
				webhookURLs:           webhookURLs,
				wsOrigins:             wsOrigins,
				outboundTransports:    outboundTransports,
				outboundRetries:       retries,
				outboundRetryInterval: retryInterval,
				tlsCertFile:           tlsCertFile,
				tlsKeyFile:            tlsKeyFile,
				ledgerSeed:            ledgerSeed,
				ledgerCacheSize:       cacheSize,
				gatewayKey:            gatewayKey,
				metricsPath:           metricsPath,
				serializeThreads:      serializeThreads,
			}

			return startAgent(parameters)
		},
	}
}

func getDBParam(cmd *cobra.Command) (*dbParam, error) {
	dbParam := &dbParam{}

	var err error

	dbParam.dbType, err = getUserSetVar(cmd, databaseTypeFlagName, databaseTypeEnvKey, false)
	if err != nil {
		return nil, err
	}

	dbParam.url, err = getUserSetVar(cmd, databaseURLFlagName, databaseURLEnvKey, true)
	if err != nil {
		return nil, err
	}

	dbParam.prefix, err = getUserSetVar(cmd, databasePrefixFlagName, databasePrefixEnvKey, true)
	if err != nil {
		return nil, err
	}

	dbTimeout, err := getUserSetVar(cmd, databaseTimeoutFlagName, databaseTimeoutEnvKey, true)
	if err != nil {
		return nil, err
	}

	if dbTimeout == "" || dbTimeout == "0" {
		dbTimeout = databaseTimeoutDefault
	}

	t, err := strconv.Atoi(dbTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to parse db timeout %s: %w", dbTimeout, err)
	}

	dbParam.timeout = uint64(t)

	return dbParam, nil
}

func getRetryParams(cmd *cobra.Command) (uint64, time.Duration, error) {
	retries, err := getIntValue(cmd, agentOutboundRetriesFlagName, agentOutboundRetriesEnvKey, 0)
	if err != nil {
		return 0, 0, err
	}

	if retries < 0 {
		return 0, 0, fmt.Errorf("%s must not be negative", agentOutboundRetriesFlagName)
	}

	v, err := getUserSetVar(cmd, agentOutboundRetryIntervalFlagName, agentOutboundRetryIntervalEnvKey, true)
	if err != nil {
		return 0, 0, err
	}

	if v == "" {
		return uint64(retries), defaultRetryInterval, nil
	}

	interval, err := time.ParseDuration(v)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to parse %s %s: %w", agentOutboundRetryIntervalFlagName, v, err)
	}

	return uint64(retries), interval, nil
}

func getGatewayKey(cmd *cobra.Command) ([]byte, error) {
	v, err := getUserSetVar(cmd, agentGatewayKeyFlagName, agentGatewayKeyEnvKey, true)
	if err != nil {
		return nil, err
	}

	if v != "" {
		return []byte(v), nil
	}

	logger.Warnf("%s not set, using a random credential system key", agentGatewayKeyFlagName)

	key := make([]byte, gatewayKeySize)
	if _, err = rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate gateway key: %w", err)
	}

	return key, nil
}

func getIntValue(cmd *cobra.Command, flagName, envKey string, defaultValue int) (int, error) {
	v, err := getUserSetVar(cmd, flagName, envKey, true)
	if err != nil {
		return 0, err
	}

	if v == "" {
		return defaultValue, nil
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("failed to parse %s %s: %w", flagName, v, err)
	}

	return n, nil
}

func getBoolValue(cmd *cobra.Command, flagName, envKey string) (bool, error) {
	v, err := getUserSetVar(cmd, flagName, envKey, true)
	if err != nil {
		return false, err
	}

	if v == "" {
		return false, nil
	}

	return strconv.ParseBool(v)
}

func createFlags(startCmd *cobra.Command) {
	// agent host flag
	startCmd.Flags().StringP(agentHostFlagName, agentHostFlagShorthand, "", agentHostFlagUsage)

	// agent token flag
	startCmd.Flags().StringP(agentTokenFlagName, agentTokenFlagShorthand, "", agentTokenFlagUsage)

	// db type
	startCmd.Flags().StringP(databaseTypeFlagName, databaseTypeFlagShorthand, "", databaseTypeFlagUsage)

	// db url
	startCmd.Flags().StringP(databaseURLFlagName, databaseURLFlagShorthand, "", databaseURLFlagUsage)

	// db prefix
	startCmd.Flags().StringP(databasePrefixFlagName, databasePrefixFlagShorthand, "", databasePrefixFlagUsage)

	// db timeout
	startCmd.Flags().StringP(databaseTimeoutFlagName, "", "", databaseTimeoutFlagUsage)

	// webhook url flag
	startCmd.Flags().StringSliceP(agentWebhookFlagName, agentWebhookFlagShorthand, []string{}, agentWebhookFlagUsage)

	// websocket origin flag
	startCmd.Flags().StringSliceP(agentWSOriginFlagName, "", []string{}, agentWSOriginFlagUsage)

	// log level
	startCmd.Flags().StringP(agentLogLevelFlagName, "", "", agentLogLevelFlagUsage)

	// agent outbound transport flag
	startCmd.Flags().StringSliceP(agentOutboundTransportFlagName, agentOutboundTransportFlagShorthand, []string{},
		agentOutboundTransportFlagUsage)

	// outbound retries
	startCmd.Flags().StringP(agentOutboundRetriesFlagName, "", "", agentOutboundRetriesFlagUsage)

	// outbound retry interval
	startCmd.Flags().StringP(agentOutboundRetryIntervalFlagName, "", "", agentOutboundRetryIntervalFlagUsage)

	// tls cert file
	startCmd.Flags().StringP(agentTLSCertFileFlagName,
		agentTLSCertFileFlagShorthand, "", agentTLSCertFileFlagUsage)

	// tls key file
	startCmd.Flags().StringP(agentTLSKeyFileFlagName,
		agentTLSKeyFileFlagShorthand, "", agentTLSKeyFileFlagUsage)

	// ledger seed file
	startCmd.Flags().StringP(agentLedgerSeedFlagName, "", "", agentLedgerSeedFlagUsage)

	// ledger cache size
	startCmd.Flags().StringP(agentLedgerCacheSizeFlagName, "", "", agentLedgerCacheSizeFlagUsage)

	// gateway key
	startCmd.Flags().StringP(agentGatewayKeyFlagName, "", "", agentGatewayKeyFlagUsage)

	// metrics path
	startCmd.Flags().StringP(agentMetricsPathFlagName, "", "", agentMetricsPathFlagUsage)

	// serialize threads
	startCmd.Flags().StringP(agentSerializeThreadsFlagName, "", "", agentSerializeThreadsFlagUsage)
}

func getUserSetVar(cmd *cobra.Command, flagName, envKey string, isOptional bool) (string, error) {
	if cmd.Flags().Changed(flagName) {
		value, err := cmd.Flags().GetString(flagName)
		if err != nil {
			return "", fmt.Errorf(flagName+" flag not found: %s", err)
		}

		return value, nil
	}

	value, isSet := os.LookupEnv(envKey)

	if isOptional || isSet {
		return value, nil
	}

	return "", errors.New("Neither " + flagName + " (command line flag) nor " + envKey +
		" (environment variable) have been set.")
}

func getUserSetVars(cmd *cobra.Command, flagName, envKey string, isOptional bool) ([]string, error) {
	if cmd.Flags().Changed(flagName) {
		value, err := cmd.Flags().GetStringSlice(flagName)
		if err != nil {
			return nil, fmt.Errorf(flagName+" flag not found: %s", err)
		}

		return value, nil
	}

	value, isSet := os.LookupEnv(envKey)

	var values []string

	if isSet {
		values = strings.Split(value, ",")
	}

	if isOptional || isSet {
		return values, nil
	}

	return nil, fmt.Errorf(" %s not set. "+
		"It must be set via either command line or environment variable", flagName)
}

func getOutboundTransports(parameters *agentParameters) ([]transport.OutboundTransport, error) {
	outboundTransports := parameters.outboundTransports
	if len(outboundTransports) == 0 {
		outboundTransports = []string{httpProtocol}
	}

	var transports []transport.OutboundTransport

	for _, outboundTransport := range outboundTransports {
		switch outboundTransport {
		case httpProtocol:
			outbound, err := arieshttp.NewOutbound(arieshttp.WithOutboundHTTPClient(&http.Client{}),
				arieshttp.WithRetry(parameters.outboundRetries, parameters.outboundRetryInterval))
			if err != nil {
				return nil, fmt.Errorf("http outbound transport initialization failed: %w", err)
			}

			transports = append(transports, outbound)
		case websocketProtocol:
			transports = append(transports, ws.NewOutbound())
		default:
			return nil, fmt.Errorf("outbound transport [%s] not supported", outboundTransport)
		}
	}

	return transports, nil
}

func setLogLevel(logLevel string) error {
	if logLevel != "" {
		level, err := log.ParseLevel(logLevel)
		if err != nil {
			return fmt.Errorf("failed to parse log level '%s' : %w", logLevel, err)
		}

		log.SetLevel("", level)

		logger.Infof("logger level set to %s", logLevel)
	}

	return nil
}

func validateAuthorizationBearerToken(w http.ResponseWriter, r *http.Request, token string) bool {
	actHdr := r.Header.Get("Authorization")
	expHdr := "Bearer " + token

	if subtle.ConstantTimeCompare([]byte(actHdr), []byte(expHdr)) != 1 {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte("Unauthorised.\n")) // nolint:gosec,errcheck

		return false
	}

	return true
}

func authorizationMiddleware(token string) mux.MiddlewareFunc {
	middleware := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if validateAuthorizationBearerToken(w, r, token) {
				next.ServeHTTP(w, r)
			}
		})
	}

	return middleware
}

func startAgent(parameters *agentParameters) error {
	if parameters.host == "" {
		return errMissingHost
	}

	router, err := createRouter(parameters)
	if err != nil {
		return err
	}

	logger.Infof("Starting present-proof agent rest on host [%s]", parameters.host)
	// start server on given port and serve using given handlers
	handler := cors.New(
		cors.Options{
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodHead},
			AllowedHeaders: []string{"Origin", "Accept", "Content-Type", "X-Requested-With", "Authorization"},
		},
	).Handler(router)

	err = parameters.server.ListenAndServe(parameters.host, handler, parameters.tlsCertFile, parameters.tlsKeyFile)
	if err != nil {
		return fmt.Errorf("failed to start aries agent rest on port [%s], cause:  %w", parameters.host, err)
	}

	return nil
}

func createRouter(parameters *agentParameters) (*mux.Router, error) {
	store, err := createStoreProvider(parameters)
	if err != nil {
		return nil, err
	}

	ctx, err := createAgentContext(parameters, store)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	clientOpts := []client.Opt{client.WithSessionStore(store), client.WithMetrics(registry)}
	if parameters.serializeThreads {
		clientOpts = append(clientOpts, client.WithSerializedThreads())
	}

	// get all HTTP REST API handlers available for controller API
	handlers, err := controller.GetRESTHandlers(ctx, controller.WithWebhookURLs(parameters.webhookURLs...),
		controller.WithWSOriginPatterns(parameters.wsOrigins...), controller.WithClientOptions(clientOpts...))
	if err != nil {
		return nil, fmt.Errorf("failed to start aries agent rest on port [%s], failed to get rest service api :  %w",
			parameters.host, err)
	}

	inbound, err := arieshttp.NewInboundHandler(ctx.InboundMessageHandler(), func(r *http.Request) string {
		return mux.Vars(r)["connection_id"]
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start aries agent rest on port [%s], failed to create inbound handler : %w",
			parameters.host, err)
	}

	router := mux.NewRouter()
	router.Handle(inboundPath, inbound).Methods(http.MethodPost)
	router.Handle(parameters.metricsPath, promhttp.HandlerFor(registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	api := router.NewRoute().Subrouter()

	if parameters.token != "" {
		api.Use(authorizationMiddleware(parameters.token))
	}

	for _, handler := range handlers {
		api.HandleFunc(handler.Path(), handler.Handle()).Methods(handler.Method())
	}

	return router, nil
}

func createAgentContext(parameters *agentParameters, store storage.Provider) (*context.Provider, error) {
	transports, err := getOutboundTransports(parameters)
	if err != nil {
		return nil, fmt.Errorf("failed to start aries agent rest on port [%s], failed to outbound transport opts : %w",
			parameters.host, err)
	}

	ledger := mockanoncreds.NewLedger()

	if parameters.ledgerSeed != "" {
		if err = loadLedgerSeed(ledger, parameters.ledgerSeed); err != nil {
			return nil, fmt.Errorf("failed to start aries agent rest on port [%s], failed to seed ledger : %w",
				parameters.host, err)
		}
	}

	cached := ledgercache.New(ledger, ledgercache.WithSize(parameters.ledgerCacheSize))

	gateway, err := mockanoncreds.NewGateway(cached, parameters.gatewayKey)
	if err != nil {
		return nil, fmt.Errorf("failed to start aries agent rest on port [%s], failed to create gateway : %w",
			parameters.host, err)
	}

	ctx, err := context.New(
		context.WithStorageProvider(store),
		context.WithOutboundTransports(transports...),
		context.WithLedger(cached),
		context.WithGateway(gateway),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start aries agent rest on port [%s], failed to create context : %w",
			parameters.host, err)
	}

	return ctx, nil
}

func createStoreProvider(parameters *agentParameters) (storage.Provider, error) {
	provider, supported := supportedStorageProviders[parameters.dbParam.dbType]
	if !supported {
		return nil, fmt.Errorf("key database type not set to a valid type." +
			" run start --help to see the available options")
	}

	var store storage.Provider

	err := backoff.RetryNotify(
		func() error {
			var openErr error
			store, openErr = provider(parameters.dbParam.url, parameters.dbParam.prefix)
			return openErr
		},
		backoff.WithMaxRetries(backoff.NewConstantBackOff(time.Second), parameters.dbParam.timeout),
		func(retryErr error, t time.Duration) {
			logger.Warnf(
				"failed to connect to storage, will sleep for %s before trying again : %s\n",
				t, retryErr)
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to storage at %s : %w", parameters.dbParam.url, err)
	}

	return store, nil
}
