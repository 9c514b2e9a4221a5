package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"fundforge/config"
	"fundforge/crypto"
	"fundforge/native/registry"
	"fundforge/observability/logging"
	"fundforge/observability/metrics"
	"fundforge/storage"
	"fundforge/storage/state"
)

func main() {
	configFile := flag.String("config", "./fundforge.toml", "Path to the configuration file")
	flag.Parse()

	env := os.Getenv("FUNDFORGE_ENV")
	logger := logging.Setup("fundforge", env)

	cfg, err := config.Load(*configFile)
	if err != nil {
		logger.Error("Failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	command := flag.Arg(0)
	switch command {
	case "deploy":
		err = runDeploy(logger, cfg)
	case "show":
		err = runShow(logger, cfg)
	default:
		fmt.Fprintf(os.Stderr, "usage: fundforge [-config path] <deploy|show>\n")
		os.Exit(2)
	}
	if err != nil {
		logger.Error("Command failed", slog.String("command", command), slog.Any("error", err))
		os.Exit(1)
	}
}

func openRegistry(cfg *config.Config) (*registry.Registry, storage.Database, error) {
	db, err := storage.NewLevelDB(cfg.DataDir)
	if err != nil {
		return nil, nil, fmt.Errorf("open state database: %w", err)
	}
	manager := state.NewManager(db)
	reg := registry.NewRegistry(cfg.AdminAddress(), manager)
	reg.SetParams(cfg.EscrowParams())
	reg.SetEmitter(metrics.NewRecorder(prometheus.DefaultRegisterer, nil))
	return reg, db, nil
}

func runDeploy(logger *slog.Logger, cfg *config.Config) error {
	init, err := cfg.InitParams()
	if err != nil {
		return err
	}
	reg, db, err := openRegistry(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	ledger, instance, err := reg.DeployCompleteSystem(cfg.AdminAddress(), init)
	if err != nil {
		return err
	}
	ledgerHandle := ledger.Handle()
	instanceHandle := instance.Handle()
	logger.Info("Deployed complete system",
		slog.String("ledger", crypto.NewAddress(crypto.FundPrefix, ledgerHandle[:]).String()),
		slog.String("instance", crypto.NewAddress(crypto.FundPrefix, instanceHandle[:]).String()),
		slog.String("project", init.Name),
	)
	return nil
}

func runShow(logger *slog.Logger, cfg *config.Config) error {
	db, err := storage.NewLevelDB(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("open state database: %w", err)
	}
	defer db.Close()
	manager := state.NewManager(db)

	st := manager.RegistryState()
	count, err := st.DeploymentCount()
	if err != nil {
		return err
	}
	if count == 0 {
		return registry.ErrNoDeployments
	}
	entry, _, err := st.DeploymentGet(count - 1)
	if err != nil {
		return err
	}
	project, ok, err := manager.EscrowState(entry.Instance).ProjectGet()
	if err != nil {
		return err
	}

	out := map[string]any{
		"deployments":     count,
		"ledger":          crypto.NewAddress(crypto.FundPrefix, entry.Ledger[:]).String(),
		"ledgerVersion":   entry.LedgerVersion,
		"instance":        crypto.NewAddress(crypto.FundPrefix, entry.Instance[:]).String(),
		"instanceVersion": entry.InstanceVersion,
		"timestamp":       entry.Timestamp,
	}
	if ok {
		out["project"] = map[string]any{
			"id":               project.ID,
			"name":             project.Name,
			"creator":          crypto.NewAddress(crypto.FundPrefix, project.Creator[:]).String(),
			"fundingGoal":      project.FundingGoal.String(),
			"fundsRaised":      project.FundsRaised.String(),
			"active":           project.Active,
			"identityVerified": project.IdentityVerified,
			"reputationScore":  project.ReputationScore,
		}
	}
	encoded, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(encoded))
	return nil
}
