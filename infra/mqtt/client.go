// Package mqtt transports bus messages between a market clearing process
// and the traders it serves. Grounded on the teacher's infra/mqtt Paho
// wrapper, adapted from vehicle dispatch commands and JSON acks to the
// bid/award message pair this domain exchanges, encoded with the
// core/bus binary codec instead of JSON.
package mqtt

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/gridflex/flexcore/core/bus"
	"github.com/gridflex/flexcore/infra/logger"
)

// Config defines the connection parameters for the Paho MQTT client.
type Config struct {
	Broker     string      `json:"broker"`
	ClientID   string      `json:"client_id"`
	Username   string      `json:"username"`
	Password   string      `json:"password"`
	UseTLS     bool        `json:"use_tls"`
	ClientCert string      `json:"client_cert"`
	ClientKey  string      `json:"client_key"`
	CABundle   string      `json:"ca_bundle"`
	QoS        byte        `json:"qos"`
	LWTTopic   string      `json:"lwt_topic"`
	LWTPayload string      `json:"lwt_payload"`
	LWTQoS     byte        `json:"lwt_qos"`
	LWTRetain  bool        `json:"lwt_retain"`
	MaxRetries int         `json:"max_retries"`
	BackoffMS  int         `json:"backoff_ms"`
	TLSConfig  *tls.Config `json:"-"`
}

// pahoClient is the subset of paho.Client this package depends on,
// narrowed to keep NewPahoClient testable without a live broker.
type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// PahoClient publishes bids and awards, and subscribes traders to the
// awards addressed to them, over an MQTT broker.
type PahoClient struct {
	cli        pahoClient
	qos        byte
	maxRetries int
	backoff    time.Duration
	log        logger.Logger
}

// NewPahoClient connects to the broker described by cfg.
func NewPahoClient(cfg Config) (*PahoClient, error) {
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}

	log := logger.New("mqtt_client")
	pc := &PahoClient{
		qos:        cfg.QoS,
		maxRetries: cfg.MaxRetries,
		backoff:    time.Duration(cfg.BackoffMS) * time.Millisecond,
		log:        log,
	}
	if pc.maxRetries <= 0 {
		pc.maxRetries = 3
	}
	if pc.backoff <= 0 {
		pc.backoff = 100 * time.Millisecond
	}

	opts.OnConnect = func(paho.Client) { log.Infof("mqtt connected") }
	opts.OnConnectionLost = func(_ paho.Client, err error) { log.Errorf("mqtt connection lost: %v", err) }
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) { log.Warnf("mqtt reconnecting") }

	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	pc.cli = c
	return pc, nil
}

// NewClientOptions builds Paho client options from cfg.
func NewClientOptions(cfg Config) (*paho.ClientOptions, error) {
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.AutoReconnect = true
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	if cfg.UseTLS {
		tlsCfg, err := cfg.LoadTLSConfig()
		if err != nil {
			return nil, err
		}
		opts.SetTLSConfig(tlsCfg)
	}
	if cfg.LWTTopic != "" {
		opts.SetWill(cfg.LWTTopic, cfg.LWTPayload, cfg.LWTQoS, cfg.LWTRetain)
	}
	return opts, nil
}

// LoadTLSConfig loads the TLS material described by cfg's file paths.
func (c Config) LoadTLSConfig() (*tls.Config, error) {
	if c.TLSConfig != nil {
		return c.TLSConfig, nil
	}
	if c.ClientCert == "" || c.ClientKey == "" || c.CABundle == "" {
		return nil, fmt.Errorf("mqtt: tls config requires client_cert, client_key and ca_bundle")
	}
	cert, err := tls.LoadX509KeyPair(c.ClientCert, c.ClientKey)
	if err != nil {
		return nil, fmt.Errorf("mqtt: load cert: %w", err)
	}
	caBytes, err := os.ReadFile(c.CABundle)
	if err != nil {
		return nil, fmt.Errorf("mqtt: read ca: %w", err)
	}
	pool := x509.NewCertPool()
	pool.AppendCertsFromPEM(caBytes)
	return &tls.Config{Certificates: []tls.Certificate{cert}, RootCAs: pool, MinVersion: tls.VersionTLS12}, nil
}

func bidsTopic(traderID string) string  { return fmt.Sprintf("market/%s/bids", traderID) }
func awardTopic(traderID string) string { return fmt.Sprintf("market/%s/award", traderID) }

// PublishBids publishes a trader's bids for one operation period, retrying
// with exponential backoff on publish failure.
func (p *PahoClient) PublishBids(traderID string, bids bus.BidsAtTime) error {
	payload, err := bids.MarshalBinary()
	if err != nil {
		return err
	}
	return p.publishWithRetry(bidsTopic(traderID), payload)
}

// PublishAward publishes a clearing's award for one trader.
func (p *PahoClient) PublishAward(traderID string, award bus.AwardData) error {
	payload, err := award.MarshalBinary()
	if err != nil {
		return err
	}
	return p.publishWithRetry(awardTopic(traderID), payload)
}

func (p *PahoClient) publishWithRetry(topic string, payload []byte) error {
	var lastErr error
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		token := p.cli.Publish(topic, p.qos, false, payload)
		token.Wait()
		if lastErr = token.Error(); lastErr == nil {
			p.log.Infof("published %s", topic)
			return nil
		}
		p.log.Errorf("publish attempt %d to %s failed: %v", attempt+1, topic, lastErr)
		time.Sleep(p.backoff * time.Duration(1<<attempt))
	}
	return lastErr
}

// SubscribeAwards subscribes traderID to its award topic, invoking onAward
// for every AwardData it decodes.
func (p *PahoClient) SubscribeAwards(traderID string, onAward func(bus.AwardData)) error {
	topic := awardTopic(traderID)
	token := p.cli.Subscribe(topic, p.qos, func(_ paho.Client, msg paho.Message) {
		var award bus.AwardData
		if err := award.UnmarshalBinary(msg.Payload()); err != nil {
			p.log.Errorf("failed to decode award on %s: %v", topic, err)
			return
		}
		onAward(award)
	})
	token.Wait()
	return token.Error()
}

// SubscribeBids subscribes the market side to a trader's bid topic,
// invoking onBids for every BidsAtTime it decodes.
func (p *PahoClient) SubscribeBids(traderID string, onBids func(bus.BidsAtTime)) error {
	topic := bidsTopic(traderID)
	token := p.cli.Subscribe(topic, p.qos, func(_ paho.Client, msg paho.Message) {
		var bids bus.BidsAtTime
		if err := bids.UnmarshalBinary(msg.Payload()); err != nil {
			p.log.Errorf("failed to decode bids on %s: %v", topic, err)
			return
		}
		onBids(bids)
	})
	token.Wait()
	return token.Error()
}

// Disconnect gracefully closes the MQTT connection.
func (p *PahoClient) Disconnect() {
	if p.cli != nil && p.cli.IsConnected() {
		p.cli.Disconnect(250)
	}
}
