// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"context"
	"fmt"
	"strings"

	corev1 "k8s.io/api/core/v1"
	k8serrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
)

// keys read by the serve command through envconfig
const (
	storeIDKey = "OPENFGA_STORE_ID"
	modelIDKey = "OPENFGA_AUTHORIZATION_MODEL_ID"
)

// kubeClient prefers an explicit kubeconfig, then the in-cluster config,
// then the default loading rules.
func kubeClient(kubeconfig string) (kubernetes.Interface, error) {
	var (
		config *rest.Config
		err    error
	)

	switch {
	case kubeconfig != "":
		config, err = clientcmd.BuildConfigFromFlags("", kubeconfig)
	default:
		if config, err = rest.InClusterConfig(); err != nil {
			config, err = clientcmd.NewNonInteractiveDeferredLoadingClientConfig(
				clientcmd.NewDefaultClientConfigLoadingRules(),
				&clientcmd.ConfigOverrides{},
			).ClientConfig()
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load kubeconfig: %w", err)
	}

	clientset, err := kubernetes.NewForConfig(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create kubernetes client: %w", err)
	}

	return clientset, nil
}

// publishModel upserts the store and model ids into the namespace/name
// configmap the deployment sources its environment from.
func publishModel(ctx context.Context, clientset kubernetes.Interface, resource string, model *fgaModel) error {
	namespace, name, found := strings.Cut(resource, "/")
	if !found || namespace == "" || name == "" || strings.Contains(name, "/") {
		return fmt.Errorf("invalid configmap resource format: %s, expected namespace/name", resource)
	}

	configMaps := clientset.CoreV1().ConfigMaps(namespace)

	cm, err := configMaps.Get(ctx, name, metav1.GetOptions{})
	if k8serrors.IsNotFound(err) {
		cm = &corev1.ConfigMap{
			ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: namespace},
			Data:       map[string]string{storeIDKey: model.StoreID, modelIDKey: model.ModelID},
		}
		if _, err := configMaps.Create(ctx, cm, metav1.CreateOptions{}); err != nil {
			return fmt.Errorf("failed to create configmap %s: %w", resource, err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get configmap %s: %w", resource, err)
	}

	if cm.Data == nil {
		cm.Data = make(map[string]string)
	}
	cm.Data[storeIDKey] = model.StoreID
	cm.Data[modelIDKey] = model.ModelID

	if _, err := configMaps.Update(ctx, cm, metav1.UpdateOptions{}); err != nil {
		return fmt.Errorf("failed to update configmap %s: %w", resource, err)
	}

	return nil
}
