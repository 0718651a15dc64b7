// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/openfga/go-sdk/client"
	"github.com/spf13/cobra"

	"github.com/canonical/tenant-sites/internal/authorization"
	"github.com/canonical/tenant-sites/internal/logging"
	"github.com/canonical/tenant-sites/internal/monitoring"
	"github.com/canonical/tenant-sites/internal/openfga"
	"github.com/canonical/tenant-sites/internal/tracing"
)

const StoreName = "tenant-sites"

type fgaModel struct {
	StoreID string `json:"store_id"`
	ModelID string `json:"model_id"`
}

var createFgaModelCmd = &cobra.Command{
	Use:   "create-fga-model",
	Short: "Creates an openfga model",
	Long:  `Writes the tenant authorization model to openfga, creating the store when none is given`,
	RunE: func(cmd *cobra.Command, args []string) error {
		apiURL, _ := cmd.Flags().GetString("fga-api-url")
		apiToken, _ := cmd.Flags().GetString("fga-api-token")
		storeID, _ := cmd.Flags().GetString("fga-store-id")
		modelVersion, _ := cmd.Flags().GetString("model-version")
		format, _ := cmd.Flags().GetString("format")
		verbose, _ := cmd.Flags().GetBool("verbose")
		configMap, _ := cmd.Flags().GetString("store-k8s-configmap-resource")
		kubeconfig, _ := cmd.Flags().GetString("kubeconfig")

		model, err := writeModel(cmd.Context(), apiURL, apiToken, storeID, modelVersion, verbose)
		if err != nil {
			return err
		}

		if configMap != "" {
			clientset, err := kubeClient(kubeconfig)
			if err != nil {
				return err
			}

			if err := publishModel(cmd.Context(), clientset, configMap, model); err != nil {
				return fmt.Errorf("failed to update configmap: %w", err)
			}
			cmd.Printf("ConfigMap %s updated successfully\n", configMap)
		}

		if format == "json" {
			return json.NewEncoder(cmd.OutOrStdout()).Encode(model)
		}

		cmd.Printf("Created model: %s\n", model.ModelID)
		if storeID == "" {
			cmd.Printf("Created store: %s\n", model.StoreID)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(createFgaModelCmd)

	createFgaModelCmd.Flags().String("fga-api-url", "", "The openfga API URL")
	createFgaModelCmd.Flags().String("fga-api-token", "", "The openfga API token")
	createFgaModelCmd.Flags().String("fga-store-id", "", "The openfga store to create the model in, if empty one will be created")
	createFgaModelCmd.Flags().String("model-version", "v0", "Version of the authorization model to write")
	createFgaModelCmd.Flags().String("format", "text", "Output format (text or json)")
	createFgaModelCmd.Flags().BoolP("verbose", "v", false, "Enable verbose logging")
	createFgaModelCmd.Flags().String("store-k8s-configmap-resource", "", "The configmap resource to store the FGA Store ID and Model ID, format: namespace/name")
	createFgaModelCmd.Flags().String("kubeconfig", "", "Path to the kubeconfig file (optional, defaults to in-cluster config)")
	_ = createFgaModelCmd.MarkFlagRequired("fga-api-url")
	_ = createFgaModelCmd.MarkFlagRequired("fga-api-token")
}

func writeModel(ctx context.Context, apiURL, apiToken, storeID, version string, verbose bool) (*fgaModel, error) {
	model, err := authorization.NewAuthorizationModelProvider(version).Model()
	if err != nil {
		return nil, err
	}

	u, err := url.Parse(apiURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse url: %w", err)
	}

	logger := logging.NewNoopLogger()

	// built directly, NewConfig would demand a store and a model
	cfg := &openfga.Config{
		ApiScheme: u.Scheme,
		ApiHost:   u.Host,
		StoreID:   storeID,
		ApiToken:  apiToken,
		Debug:     verbose,
		Tracer:    tracing.NewNoopTracer(),
		Monitor:   monitoring.NewNoopMonitor("", logger),
		Logger:    logger,
	}
	fga := openfga.NewClient(cfg)

	if cfg.StoreID == "" {
		if cfg.StoreID, err = fga.CreateStore(ctx, StoreName); err != nil {
			return nil, fmt.Errorf("failed to create store: %w", err)
		}

		// the sdk client is bound to its store when built
		fga = openfga.NewClient(cfg)
	}

	modelID, err := fga.WriteModel(ctx, &client.ClientWriteAuthorizationModelRequest{
		TypeDefinitions: model.TypeDefinitions,
		SchemaVersion:   model.SchemaVersion,
		Conditions:      model.Conditions,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to write model: %w", err)
	}

	return &fgaModel{StoreID: cfg.StoreID, ModelID: modelID}, nil
}
