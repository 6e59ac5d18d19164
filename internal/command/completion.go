// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/tfctl/awsops/internal/meta"
)

const bashCompletionScript = `# bash completion for awsops
# Fallback if bash-completion is not installed
if ! declare -F _get_comp_words_by_ref >/dev/null 2>&1; then
  _get_comp_words_by_ref() {
    cur=${COMP_WORDS[COMP_CWORD]}
    prev=${COMP_WORDS[COMP_CWORD-1]}
  }
fi

_awsops()
{
    local cur prev cmd
    COMPREPLY=()
    _get_comp_words_by_ref -n : cur prev

    if [[ ${COMP_CWORD} -eq 1 ]]; then
        COMPREPLY=( $(compgen -W "autoshut cfmetrics gcm lambda mail netio publish qi reflect sesquota completion --help --version" -- "$cur") )
        return 0
    fi

    cmd=${COMP_WORDS[1]}
    local aws="--profile --region -r"
    local common="$aws --color -c --filter -f --output -o --padding --sort -s --titles -t"
    local store="--bucket -b --key -k --cleanup --s3-endpoint --store-dir --workers -w"
    local sched="--schedule --tz"

    case "$cmd" in
        publish)
            local opts="$common $store --log-time"
            ;;
        mail)
            local opts="$common $store --text-file --html-file"
            ;;
        cfmetrics)
            local opts="$common $store"
            ;;
        reflect)
            local opts="$common --topic"
            ;;
        autoshut)
            local opts="$common $sched --workers -w --region-workers --regions --keyword --dry-run --summary"
            ;;
        sesquota)
            local opts="$common $sched --topic --threshold"
            ;;
        qi)
            if [[ ${COMP_CWORD} -eq 2 ]]; then
                COMPREPLY=( $(compgen -W "configure launch terminate" -- "$cur") )
                return 0
            fi
            if [[ ${COMP_CWORD} -eq 3 && "$cur" != -* ]]; then
                COMPREPLY=( $(compgen -W "amazon-linux nat-instance ubuntu redhat-linux windows-2012 windows-2008" -- "$cur") )
                return 0
            fi
            local opts="$aws --type --role --key --volume --ami --bootstrap"
            ;;
        gcm)
            local opts="$common --workers -w --endpoint --api-key --token --title --message --count --timeout --store-dir"
            ;;
        netio)
            local opts="$common --interface -i --interval"
            ;;
        lambda)
            if [[ "$cur" != -* ]]; then
                COMPREPLY=( $(compgen -W "publish mail cfmetrics reflect autoshut sesquota" -- "$cur") )
                return 0
            fi
            local opts="$aws"
            ;;
        completion)
            local opts="bash zsh"
            COMPREPLY=( $(compgen -W "$opts" -- "$cur") )
            return 0
            ;;
        *)
            local opts="$common"
            ;;
    esac

    if [[ "$prev" == "--output" || "$prev" == "-o" ]]; then
        COMPREPLY=( $(compgen -W "text md json yaml" -- "$cur") )
        return 0
    fi

    COMPREPLY=( $(compgen -W "$opts" -- "$cur") )
    return 0
}

complete -F _awsops awsops
`

const zshCompletionScript = `#compdef awsops

_awsops() {
  local -a cmds
  cmds=(
    'autoshut:stop untagged running EC2 instances'
    'cfmetrics:CloudFront access log to CloudWatch metrics'
    'gcm:load test a GCM push endpoint'
    'lambda:serve a utility as a Lambda handler'
    'mail:send a mailing list through SES'
    'netio:print network throughput'
    'publish:publish to SNS mobile endpoints'
    'qi:quick EC2 instance'
    'reflect:re-publish SNS notifications'
    'sesquota:SES daily quota alert'
    'completion:generate shell completion script'
  )

  local -a common
  common=(
  '--profile[AWS profile]:profile'
  '(-r --region)'{-r,--region}'[AWS region]:region'
  '(-c --color)'{-c,--color}'[enable colored text]'
  '(-o --output)'{-o,--output}'[output format]:format:(text md json yaml)'
  '(-f --filter)'{-f,--filter}'[row filters]:filters'
  '--padding[cell padding]:padding'
  '(-s --sort)'{-s,--sort}'[sort columns]:columns'
  '(-t --titles)'{-t,--titles}'[show titles]'
  )

  local -a store
  store=(
  '(-b --bucket)'{-b,--bucket}'[bucket]:bucket'
  '(-k --key)'{-k,--key}'[key]:key'
  '--cleanup[delete the batch object]'
  '--s3-endpoint[S3 compatible endpoint]:url'
  '--store-dir[local store directory]:dir:_directories'
  '(-w --workers)'{-w,--workers}'[concurrency]:workers'
  )

  if (( CURRENT == 2 )); then
    _describe -t commands 'awsops commands' cmds
    return
  fi

  local curcontext="$curcontext" state line
  case $words[2] in
    publish)
      _arguments -C $common $store '--log-time[write timing log]' '::object:'
      ;;
    mail)
      _arguments -C $common $store '--text-file[text body]:file' '--html-file[html body]:file' '::object:'
      ;;
    cfmetrics)
      _arguments -C $common $store '::object:'
      ;;
    reflect)
      _arguments -C $common '--topic[topic ARN]:arn' '::event:_files'
      ;;
    autoshut)
      _arguments -C $common \
        '(-w --workers)'{-w,--workers}'[concurrency]:workers' \
        '--region-workers[regions scanned concurrently]:n' \
        '--regions[regions]:regions' \
        '--keyword[protect keyword]:keyword' \
        '--dry-run[do not stop]' \
        '--summary[plain text narrative]' \
        '--schedule[cron spec]:spec' \
        '--tz[time zone]:tz'
      ;;
    sesquota)
      _arguments -C $common \
        '--topic[topic ARN]:arn' \
        '--threshold[percent]:threshold' \
        '--schedule[cron spec]:spec' \
        '--tz[time zone]:tz'
      ;;
    qi)
      _arguments -C \
        '1:action:(configure launch terminate)' \
        '2:os:(amazon-linux nat-instance ubuntu redhat-linux windows-2012 windows-2008)' \
        '--type[instance type]:type' \
        '--role[instance profile]:role' \
        '--key[ssh key]:key' \
        '--volume[root volume GB]:size' \
        '--ami[AMI id]:ami' \
        '--bootstrap[boot commands]:cmds'
      ;;
    gcm)
      _arguments -C $common \
        '--endpoint[push URL]:url' \
        '--api-key[API key]:key' \
        '--token[registration token]:token' \
        '--count[requests]:count' \
        '--timeout[request timeout]:duration'
      ;;
    netio)
      _arguments -C $common '(-i --interface)'{-i,--interface}'[interface]:iface' '--interval[interval]:duration'
      ;;
    lambda)
      _arguments '1: :((publish mail cfmetrics reflect autoshut sesquota))'
      ;;
    completion)
      _arguments '1: :((bash zsh))'
      ;;
    *)
      _arguments -C $common
      ;;
  esac
}

# If this file is sourced directly (not autoloaded via fpath), ensure compsys
# is initialized and register the completion
if ! typeset -f compdef >/dev/null 2>&1; then
  autoload -Uz compinit && compinit -i
fi
compdef _awsops awsops
`

func completionCommandAction(ctx context.Context, cmd *cli.Command) error {
	shell := ""
	if args := cmd.Args().Slice(); len(args) > 0 {
		shell = args[0]
	}
	switch shell {
	case "bash":
		fmt.Fprint(os.Stdout, bashCompletionScript)
	case "zsh":
		fmt.Fprint(os.Stdout, zshCompletionScript)
	default:
		// Try to detect from SHELL or print help
		sh := os.Getenv("SHELL")
		switch {
		case strings.HasSuffix(sh, "zsh"):
			fmt.Fprint(os.Stdout, zshCompletionScript)
		case strings.HasSuffix(sh, "bash"):
			fmt.Fprint(os.Stdout, bashCompletionScript)
		default:
			fmt.Fprintln(os.Stderr, "usage: awsops completion [bash|zsh]")
			return nil
		}
	}
	return nil
}

func completionCommandBuilder(meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "completion",
		Usage:     "generate shell completion script",
		UsageText: "awsops completion [bash|zsh]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Action: completionCommandAction,
	}
}
