/*
Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package log carries a zap.SugaredLogger on a context.Context, the same
// call shape the teacher gets from knative.dev/pkg/logging, minus the
// Knative dependency this module has no other use for.
package log

import (
	"context"

	"go.uber.org/zap"
)

type key struct{}

// WithLogger returns a context carrying the supplied logger.
func WithLogger(ctx context.Context, logger *zap.SugaredLogger) context.Context {
	return context.WithValue(ctx, key{}, logger)
}

// FromContext returns the logger carried on ctx, or a no-op logger if none
// was attached.
func FromContext(ctx context.Context) *zap.SugaredLogger {
	if l, ok := ctx.Value(key{}).(*zap.SugaredLogger); ok {
		return l
	}
	return zap.NewNop().Sugar()
}
