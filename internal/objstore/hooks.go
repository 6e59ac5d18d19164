// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package objstore

import (
	"context"

	"github.com/tfctl/awsops/internal/dispatch"
	"github.com/tfctl/awsops/internal/log"
)

// TimeLogSuffix is appended to the input key to name its timing log.
const TimeLogSuffix = "_time.log"

// DeleteHook removes the processed input object once its batch has drained.
func DeleteHook(s Store, bucket, key string) dispatch.Hook {
	return func(ctx context.Context, _ dispatch.Report) error {
		if err := s.Delete(ctx, bucket, key); err != nil {
			return err
		}
		log.Infof("removed %s/%s", bucket, key)
		return nil
	}
}

// TimeLogHook stores "start, end, total" for the batch at key+"_time.log".
func TimeLogHook(s Store, bucket, key string) dispatch.Hook {
	return func(ctx context.Context, report dispatch.Report) error {
		return s.Put(ctx, bucket, key+TimeLogSuffix, report.TimeLog())
	}
}
