/* corefwd - an NDN forwarding core
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

// Command corefwd is a minimal demo daemon: it loads configuration,
// stands up the forwarding threads, and accepts WebSocket faces on a
// listening port. It exists to give the forwarding core in package fw
// something real to drive end to end; a full face subsystem
// (TCP/UDP/Ethernet/Unix transports, NDNLPv2 framing) lives outside
// this repository, so only the WebSocket demo face from package face
// is wired up here.
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/cespare/xxhash"
	"github.com/gorilla/websocket"

	"github.com/ndn-forwarding/corefwd/core"
	"github.com/ndn-forwarding/corefwd/face"
	"github.com/ndn-forwarding/corefwd/fw"
	"github.com/ndn-forwarding/corefwd/ndn"
	"github.com/ndn-forwarding/corefwd/table"
)

// Version of corefwd.
var Version string

// BuildTime contains the timestamp of when this build was produced.
var BuildTime string

const maxForwardingThreads = 32

func main() {
	core.Version = Version
	core.BuildTime = BuildTime
	core.StartTimestamp = time.Now()

	var shouldPrintVersion bool
	flag.BoolVar(&shouldPrintVersion, "version", false, "Print version and exit")
	flag.BoolVar(&shouldPrintVersion, "V", false, "Print version and exit (short)")
	flag.IntVar(&core.NumForwardingThreads, "threads", 1, "Number of forwarding threads")
	flag.IntVar(&core.NumForwardingThreads, "t", 1, "Number of forwarding threads")
	var configFile string
	flag.StringVar(&configFile, "config", "", "Path to a TOML configuration file")
	flag.StringVar(&configFile, "c", "", "Path to a TOML configuration file (short)")
	flag.Parse()

	if shouldPrintVersion {
		fmt.Println("corefwd: an NDN forwarding core")
		fmt.Println("Version " + core.Version + " (Built " + core.BuildTime + ")")
		return
	}

	if core.NumForwardingThreads < 1 || core.NumForwardingThreads > maxForwardingThreads {
		fmt.Println("Number of forwarding threads must be in range [1,", maxForwardingThreads, "]")
		fmt.Println()
		flag.PrintDefaults()
		os.Exit(1)
	}

	if configFile != "" {
		if err := core.LoadConfig(configFile, false); err != nil {
			fmt.Println("Unable to load configuration file: " + err.Error())
			os.Exit(1)
		}
	}
	core.InitializeLogger()
	core.LogInfo("Main", "Starting corefwd")

	faces := face.NewTable()

	// 0 means "do not set a hop limit on Interests that lack one".
	defaultHopLimit := uint8(core.GetConfigIntDefault("forwarder.default_hop_limit", 0))

	threads := make([]*fw.Thread, core.NumForwardingThreads)
	for i := range threads {
		t := fw.NewThread(fw.ThreadConfig{
			ID:              i,
			Faces:           faces,
			QueueSize:       core.GetConfigIntDefault("tables.pit.queue_size", 1024),
			ContentStoreCap: core.GetConfigIntDefault("tables.content_store.capacity", 1024),
			DnlLifetime:     time.Duration(core.GetConfigIntDefault("tables.dead_nonce_list.lifetime_ms", 6000)) * time.Millisecond,
			DnlCapacity:     core.GetConfigIntDefault("tables.dead_nonce_list.capacity", 16384),
			DefaultHopLimit: defaultHopLimit,
		})
		table.Configure(t.Regions)
		threads[i] = t
		go t.Run()
	}

	listen := core.GetConfigStringDefault("faces.websocket.listen", ":6363")
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	mux := http.NewServeMux()
	mux.HandleFunc("/ndn", func(w http.ResponseWriter, r *http.Request) {
		if core.ShouldQuit {
			http.Error(w, "shutting down", http.StatusServiceUnavailable)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			core.LogWarn("Main", "WebSocket upgrade failed: "+err.Error())
			return
		}
		wsFace := face.NewWebSocketFace(conn, ndn.NonLocal, listen, r.RemoteAddr)
		t := threads[int(xxhash.Sum64String(r.RemoteAddr)%uint64(len(threads)))]
		id := t.AddFace(wsFace)
		core.LogInfo("Main", "Accepted WebSocket face FaceID="+strconv.FormatUint(id, 10)+" from "+r.RemoteAddr)
		go wsFace.RunReceiveLoop(0)
	})
	server := &http.Server{Addr: listen, Handler: mux}
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			core.LogFatal("Main", "WebSocket listener failed: "+err.Error())
		}
	}()
	core.LogInfo("Main", "Listening for WebSocket faces on "+listen)

	sigChannel := make(chan os.Signal, 1)
	signal.Notify(sigChannel, os.Interrupt)
	receivedSig := <-sigChannel
	core.LogInfo("Main", "Received signal "+receivedSig.String()+" - exiting")
	core.ShouldQuit = true

	_ = server.Close()

	for _, f := range faces.GetAll() {
		faces.Remove(f.FaceID())
	}

	for _, t := range threads {
		t.TellToQuit()
	}
	for _, t := range threads {
		<-t.HasQuit
	}
}
