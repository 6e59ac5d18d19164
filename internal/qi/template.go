// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package qi

import "encoding/json"

type cfnTemplate struct {
	FormatVersion string                 `json:"AWSTemplateFormatVersion"`
	Description   string                 `json:"Description"`
	Resources     map[string]cfnResource `json:"Resources"`
	Outputs       map[string]cfnOutput   `json:"Outputs"`
}

type cfnResource struct {
	Type       string `json:"Type"`
	Properties any    `json:"Properties"`
}

type cfnOutput struct {
	Value       cfnRef `json:"Value"`
	Description string `json:"Description"`
}

type cfnRef struct {
	Ref string `json:"Ref"`
}

type securityGroup struct {
	GroupDescription     string        `json:"GroupDescription"`
	SecurityGroupIngress []ingressRule `json:"SecurityGroupIngress"`
}

type ingressRule struct {
	IPProtocol string `json:"IpProtocol"`
	FromPort   string `json:"FromPort"`
	ToPort     string `json:"ToPort"`
	CidrIP     string `json:"CidrIp"`
}

type instance struct {
	BlockDeviceMappings []blockDevice `json:"BlockDeviceMappings"`
	ImageID             string        `json:"ImageId"`
	InstanceType        string        `json:"InstanceType"`
	KeyName             string        `json:"KeyName"`
	SecurityGroupIDs    []cfnRef      `json:"SecurityGroupIds"`
	Tags                []tag         `json:"Tags"`
	UserData            base64Fn      `json:"UserData"`
	IamInstanceProfile  string        `json:"IamInstanceProfile"`
}

type blockDevice struct {
	DeviceName string `json:"DeviceName"`
	Ebs        ebs    `json:"Ebs"`
}

type ebs struct {
	VolumeSize int    `json:"VolumeSize"`
	VolumeType string `json:"VolumeType"`
}

type tag struct {
	Key   string `json:"Key"`
	Value string `json:"Value"`
}

type base64Fn struct {
	Value string `json:"Fn::Base64"`
}

// Logical ids and output keys used in the generated stack.
const (
	SecurityGroupID = "InstanceSecurityGroup"
	InstanceID      = "Ec2Instance"
	OutputInstance  = "InstanceId"
)

var ports = []string{"22", "3389", "80", "443"}

// Template renders the CloudFormation document launching p.
func Template(p Properties) ([]byte, error) {
	rules := make([]ingressRule, 0, len(ports))
	for _, port := range ports {
		rules = append(rules, ingressRule{IPProtocol: "tcp", FromPort: port, ToPort: port, CidrIP: "0.0.0.0/0"})
	}

	t := cfnTemplate{
		FormatVersion: "2010-09-09",
		Description:   "Launched using awsops quick instance.",
		Resources: map[string]cfnResource{
			SecurityGroupID: {
				Type: "AWS::EC2::SecurityGroup",
				Properties: securityGroup{
					GroupDescription:     "Enable required inbound ports",
					SecurityGroupIngress: rules,
				},
			},
			InstanceID: {
				Type: "AWS::EC2::Instance",
				Properties: instance{
					BlockDeviceMappings: []blockDevice{{
						DeviceName: p.Device,
						Ebs:        ebs{VolumeSize: p.Volume, VolumeType: "gp2"},
					}},
					ImageID:            p.AMI,
					InstanceType:       p.Type,
					KeyName:            p.Key,
					SecurityGroupIDs:   []cfnRef{{Ref: SecurityGroupID}},
					Tags:               []tag{{Key: "Name", Value: p.OS}},
					UserData:           base64Fn{Value: "#!/bin/bash\n" + p.Bootstrap},
					IamInstanceProfile: p.Role,
				},
			},
		},
		Outputs: map[string]cfnOutput{
			OutputInstance: {
				Value:       cfnRef{Ref: InstanceID},
				Description: "Instance Id of newly created instance",
			},
		},
	}
	return json.MarshalIndent(t, "", "  ")
}
