// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"net/http"
	"os"

	"golang.org/x/sync/errgroup"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/stakepool/api"
	"github.com/vechain/stakepool/api/admin"
	"github.com/vechain/stakepool/authority/claimsclient"
	"github.com/vechain/stakepool/builtin/pool"
	"github.com/vechain/stakepool/eventdb"
	"github.com/vechain/stakepool/log"
	"github.com/vechain/stakepool/lvldb"
	"github.com/vechain/stakepool/metrics"
	"github.com/vechain/stakepool/runtime"
	"github.com/vechain/stakepool/state"
)

var (
	version   string
	gitCommit string
	gitTag    string

	logger = log.WithContext("pkg", "poold")
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func main() {
	app := cli.App{
		Version:   fullVersion(),
		Name:      "poold",
		Usage:     "Node hosting the VeChain staking pool",
		Copyright: "2026 VeChain Foundation <https://vechain.org/>",
		Flags: []cli.Flag{
			dataDirFlag,
			persistFlag,
			genesisFlag,
			cacheFlag,
			stateCacheFlag,
			claimsURLFlag,
			roleVersionFlag,
			apiAddrFlag,
			apiCorsFlag,
			apiBacktraceLimitFlag,
			apiLogsLimitFlag,
			skipLogsFlag,
			enableAPILogsFlag,
			verbosityFlag,
			jsonLogsFlag,
			enableMetricsFlag,
			adminAddrFlag,
			disableNTPFlag,
		},
		Action: defaultAction,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultAction(ctx *cli.Context) error {
	exitSignal := handleExitSignal()
	defer func() { logger.Info("exited") }()

	logLevel := initLogger(ctx)

	gene, err := selectGenesis(ctx)
	if err != nil {
		return err
	}
	poolAddr, authorityAddr, err := gene.Addresses()
	if err != nil {
		return err
	}

	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
	}

	var (
		mainDB  *lvldb.LevelDB
		eventDB *eventdb.EventDB
		dataDir = "Memory"
	)
	if ctx.Bool(persistFlag.Name) {
		if dataDir, err = makeDataDir(ctx); err != nil {
			return err
		}
		if mainDB, err = openMainDB(ctx, dataDir); err != nil {
			return err
		}
		if !ctx.Bool(skipLogsFlag.Name) {
			if eventDB, err = openEventDB(dataDir); err != nil {
				mainDB.Close()
				return err
			}
		}
	} else {
		if mainDB, err = lvldb.NewMem(); err != nil {
			return err
		}
		if !ctx.Bool(skipLogsFlag.Name) {
			if eventDB, err = eventdb.NewMem(); err != nil {
				mainDB.Close()
				return err
			}
		}
	}
	defer func() { logger.Info("closing main database..."); mainDB.Close() }()
	if eventDB != nil {
		defer func() { logger.Info("closing event database..."); eventDB.Close() }()
	}

	stater := state.NewStater(mainDB, ctx.Int(stateCacheFlag.Name))
	applied, err := gene.Apply(mainDB, stater)
	if err != nil {
		return err
	}
	genesisID, _ := gene.ID()

	cfg := runtime.Config{
		PoolAddress:      poolAddr,
		AuthorityAddress: authorityAddr,
		RoleVersion:      ctx.Uint64(roleVersionFlag.Name),
	}
	if url := ctx.String(claimsURLFlag.Name); url != "" {
		client := claimsclient.New(url)
		cfg.Authorizer = func(*state.State) pool.Authorizer { return client }
	}
	rt := runtime.New(stater, eventDB, cfg)

	apiHandler, apiCloser := api.New(rt, api.Options{
		AllowedOrigins:  ctx.String(apiCorsFlag.Name),
		BacktraceLimit:  ctx.Uint64(apiBacktraceLimitFlag.Name),
		SkipLogs:        ctx.Bool(skipLogsFlag.Name),
		EnableReqLogger: ctx.Bool(enableAPILogsFlag.Name),
		EnableMetrics:   ctx.Bool(enableMetricsFlag.Name),
		LogsLimit:       ctx.Uint64(apiLogsLimitFlag.Name),
	})
	defer func() { logger.Info("stopping API server..."); apiCloser() }()

	group, groupCtx := errgroup.WithContext(exitSignal)

	apiURL, err := startServer(groupCtx, group, "API", ctx.String(apiAddrFlag.Name), apiHandler)
	if err != nil {
		return err
	}

	var adminURL string
	if addr := ctx.String(adminAddrFlag.Name); addr != "" {
		var metricsHandler http.Handler
		if ctx.Bool(enableMetricsFlag.Name) {
			metricsHandler = metrics.HTTPHandler()
		}
		if adminURL, err = startServer(groupCtx, group, "admin", addr, admin.New(logLevel, metricsHandler)); err != nil {
			return err
		}
	}

	if !ctx.Bool(disableNTPFlag.Name) {
		go checkClockOffset()
	}

	printStartupMessage(genesisID.String(), applied, rt, dataDir, apiURL, adminURL)

	return group.Wait()
}
