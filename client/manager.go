package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/inconshreveable/log15"

	"intlist/config"
	"intlist/types"
)

// Caller is what the manager needs from a client.
type Caller interface {
	Call(ctx context.Context, item *types.Item) (*types.Reply, error)
	Close() error
}

// ClientsManager reads "<clientId> <item>" lines and sends every item through
// the client owned by clientId, creating clients on first use and closing
// them once idle.
type ClientsManager struct {
	clients   map[string]*ClientUsage
	input     io.Reader
	out       io.Writer
	newClient func() (Caller, error)
	idle      time.Duration
	logger    log15.Logger
	mux       sync.Mutex
}

type ClientUsage struct {
	client   Caller
	lastUsed time.Time
}

func NewClientsManager(cfg *config.Config, out io.Writer) (manager *ClientsManager, err error) {
	var input io.Reader = os.Stdin
	if len(cfg.ClientsInputPath) != 0 {
		input, err = os.Open(cfg.ClientsInputPath)
		if err != nil {
			return nil, err
		}
	}

	newClient := func() (Caller, error) {
		return NewClient(cfg)
	}
	return newClientsManager(input, out, newClient, cfg.Logger("client")), nil
}

func newClientsManager(input io.Reader, out io.Writer, newClient func() (Caller, error), logger log15.Logger) *ClientsManager {
	return &ClientsManager{
		clients:   make(map[string]*ClientUsage),
		input:     input,
		out:       out,
		newClient: newClient,
		idle:      10 * time.Second,
		logger:    logger,
	}
}

// ListenClientActions processes input lines in order until the input ends or
// ctx is cancelled. An input that can be closed, other than stdin, is closed
// on return.
func (cm *ClientsManager) ListenClientActions(ctx context.Context) error {
	if cm.input == os.Stdin {
		fmt.Fprintln(cm.out, "Write clients tasks here in format <clientId> <item>")
	} else if closer, ok := cm.input.(io.Closer); ok {
		defer closer.Close()
	}
	defer cm.closeAll()

	ticker := time.NewTicker(cm.idle)
	defer ticker.Stop()

	lines, errChan := SubscribeToInput(ctx, cm.input)

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			cm.removeUnusedClients(now)
		case line, ok := <-lines:
			if !ok {
				return <-errChan
			}
			if err := cm.processClientAction(ctx, line); err != nil {
				cm.logger.Error("Cannot process client action", "line", line, "error", err)
				fmt.Fprintf(cm.out, "ERROR: %v\n", err)
			}
		}
	}
}

func (cm *ClientsManager) removeUnusedClients(now time.Time) {
	cm.mux.Lock()
	defer cm.mux.Unlock()
	for clientId, clientUsage := range cm.clients {
		if now.Sub(clientUsage.lastUsed) > cm.idle {
			clientUsage.client.Close()
			delete(cm.clients, clientId)
		}
	}
}

func (cm *ClientsManager) closeAll() {
	cm.mux.Lock()
	defer cm.mux.Unlock()
	for clientId, clientUsage := range cm.clients {
		clientUsage.client.Close()
		delete(cm.clients, clientId)
	}
}

func (cm *ClientsManager) processClientAction(ctx context.Context, inputStr string) error {
	clientId, itemStr, found := strings.Cut(strings.TrimSpace(inputStr), " ")
	if !found || len(clientId) == 0 {
		return fmt.Errorf("wrong input string %q, should be in format <clientId> <item>", inputStr)
	}

	var item types.Item
	if err := json.Unmarshal([]byte(itemStr), &item); err != nil {
		return fmt.Errorf("client %s: %w", clientId, err)
	}

	client, err := cm.client(clientId)
	if err != nil {
		return err
	}

	reply, err := client.Call(ctx, &item)
	if err != nil {
		return fmt.Errorf("client %s: %w", clientId, err)
	}

	b, err := json.Marshal(reply)
	if err != nil {
		return err
	}
	fmt.Fprintf(cm.out, "%s %s\n", clientId, b)
	return nil
}

func (cm *ClientsManager) client(clientId string) (Caller, error) {
	cm.mux.Lock()
	defer cm.mux.Unlock()

	if usage, ok := cm.clients[clientId]; ok {
		usage.lastUsed = time.Now()
		return usage.client, nil
	}

	client, err := cm.newClient()
	if err != nil {
		return nil, err
	}
	cm.clients[clientId] = &ClientUsage{client, time.Now()}
	return client, nil
}
